// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持文件轮转
//   - xmetrics: 诊断运行时指标，基于 OpenTelemetry metric API
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 自动从 context 中提取诊断请求和追踪信息注入日志
//   - 库代码默认不输出，由调用方注入 Logger 和 Recorder
package observability
