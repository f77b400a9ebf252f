package xctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Trace 日志属性 Key 常量，遵循 OpenTelemetry 语义约定（下划线分隔）
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	traceFieldCount = 2
)

// TraceID 从 context 中的 OTel span 读取 trace ID，无有效 span 时返回空字符串。
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID 从 context 中的 OTel span 读取 span ID，无有效 span 时返回空字符串。
func SpanID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// RequireTraceID 读取 trace ID，不存在返回 ErrMissingTraceID。
func RequireTraceID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := TraceID(ctx)
	if v == "" {
		return "", ErrMissingTraceID
	}
	return v, nil
}
