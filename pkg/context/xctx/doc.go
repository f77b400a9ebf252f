// Package xctx 在 context.Context 上携带诊断请求的标识信息，并为日志系统提供属性提取。
//
// # 字段
//
// 诊断信息（Diag）：
//   - diag_request_id   : 诊断请求 ID，关联同一请求的全部诊断输出
//   - diag_request_mode : 请求处理模式（Regular / Resource）
//   - diag_policy       : 请求开始时确定的诊断策略名称
//
// 追踪信息（Trace）从 OpenTelemetry span context 读取，不单独存储：
//   - trace_id
//   - span_id
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：缺失时返回零值
//	RequireXxx(ctx)        - 强制读取：缺失时返回错误
//	AppendXxxAttrs(a, ctx) - 追加非空字段为 slog.Attr
//
// xctx 不依赖 xreqctx：RequestContext 本身由 xreqctx.NewContext 携带，
// 这里只保存日志需要的字符串字段。
package xctx
