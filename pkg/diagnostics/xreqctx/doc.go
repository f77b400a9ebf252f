// Package xreqctx 实现请求级诊断上下文 RequestContext。
//
// 每个入站请求创建一个 RequestContext，它持有：
//   - 不可变的请求 ID 和处理模式（Regular / Resource）
//   - 当前诊断策略，请求期间只能收窄，放宽返回 ErrPolicyViolation
//   - 一个只能启动一次、停止一次的计时器
//   - 脚本标签提供者，渲染时重新求值 Determinator 决定是否注入
//   - 请求级键值存储
//
// 计时状态机：
//
//	NotStarted --StartTiming--> Running --StopTiming--> Stopped
//
// CurrentTimer 只在 Running 和 Stopped 状态可用。
//
// RequestContext 不做内部同步，同一请求内的 SetPolicy 调用以及最终的脚本门控读取
// 需要由调用方串行化。
package xreqctx
