// Package diagnostics 提供单请求诊断相关的子包。
//
// 子包列表：
//   - xpolicy: 诊断策略、事件、请求元数据与策略决定器
//   - xreqctx: 单个请求的诊断上下文，策略只能收窄
//   - xtimer: 计时器与计时记录导出
//   - xscript: 客户端脚本标签生成与门控
//   - xresource: 诊断资源端点分类
//   - xstore: 请求级键值存储
//   - xdiag: 把以上组件组装为诊断运行时
package diagnostics
