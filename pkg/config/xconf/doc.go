// Package xconf 加载诊断运行时配置，基于 koanf 实现。
//
// # 支持的格式
//
//   - YAML（推荐）：.yaml, .yml
//   - JSON：.json
//
// # 默认值
//
// 未出现在配置中的键使用 Default() 的值。切片类字段（status_codes、
// content_types、uri_deny、client_cidrs）按整体覆盖，不与默认值合并；
// 显式写成空列表表示关闭对应规则。
//
// # 配置监视
//
// Watch 基于 fsnotify 监视配置文件所在目录，内置防抖，支持 vim/emacs
// 原子写入。重载失败时保留上一次有效配置，并把错误交给回调。
// Stop() 返回后不再有回调执行；Stop 会等待进行中的回调，不要在回调中调用。
package xconf
