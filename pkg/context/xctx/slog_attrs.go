package xctx

import (
	"context"
	"log/slog"
)

// AppendDiagAttrs 将诊断字段追加到 attrs，只追加非空字段。
func AppendDiagAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := DiagRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyDiagRequestID, v))
	}
	if v := DiagRequestMode(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyDiagRequestMode, v))
	}
	if v := DiagPolicy(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyDiagPolicy, v))
	}
	return attrs
}

// AppendTraceAttrs 将追踪字段追加到 attrs，只追加非空字段。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	return attrs
}

// LogAttrs 返回 context 中全部可用于日志的字段，都为空时返回 nil。
func LogAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := AppendTraceAttrs(AppendDiagAttrs(make([]slog.Attr, 0, diagFieldCount+traceFieldCount), ctx), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
