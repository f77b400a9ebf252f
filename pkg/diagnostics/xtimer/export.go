package xtimer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/omeyang/xdiag/xtimer"

// Export 把 Result 导出为一个已结束的 span，起止时间取自 Result。
//
// tracer 为 nil 时使用全局 TracerProvider。ctx 为 nil 时使用 context.Background()。
func Export(ctx context.Context, tracer trace.Tracer, name string, r Result, attrs ...attribute.KeyValue) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}

	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, attribute.Int64("xdiag.timer.offset_ns", r.Offset.Nanoseconds()))
	all = append(all, attrs...)

	_, span := tracer.Start(ctx, name,
		trace.WithTimestamp(r.StartTime),
		trace.WithAttributes(all...),
	)
	span.End(trace.WithTimestamp(r.EndTime()))
}
