package xmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xdiag/xmetrics"

	metricPolicyChanges    = "xdiag.policy.changes"
	metricPolicyViolations = "xdiag.policy.violations"
	metricScriptTags       = "xdiag.script.tags"
	metricRequestDuration  = "xdiag.request.duration"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option OTel Recorder 配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认使用全局 provider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

type otelRecorder struct {
	changes    metric.Int64Counter
	violations metric.Int64Counter
	scriptTags metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewOTelRecorder 创建基于 OpenTelemetry 的 Recorder。
func NewOTelRecorder(opts ...Option) (Recorder, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	changes, err := meter.Int64Counter(metricPolicyChanges,
		metric.WithDescription("diagnostic policy narrowing transitions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}
	violations, err := meter.Int64Counter(metricPolicyViolations,
		metric.WithDescription("attempts to widen the diagnostic policy"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}
	scriptTags, err := meter.Int64Counter(metricScriptTags,
		metric.WithDescription("script tag gating outcomes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}
	duration, err := meter.Float64Histogram(metricRequestDuration,
		metric.WithDescription("diagnosed request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create histogram failed: %w", err)
	}

	return &otelRecorder{
		changes:    changes,
		violations: violations,
		scriptTags: scriptTags,
		duration:   duration,
	}, nil
}

func (r *otelRecorder) PolicyChanged(ctx context.Context, from, to string) {
	r.changes.Add(nonNil(ctx), 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (r *otelRecorder) PolicyViolation(ctx context.Context, current, requested string) {
	r.violations.Add(nonNil(ctx), 1, metric.WithAttributes(
		attribute.String("current", current),
		attribute.String("requested", requested),
	))
}

func (r *otelRecorder) ScriptTags(ctx context.Context, outcome string) {
	r.scriptTags.Add(nonNil(ctx), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *otelRecorder) RequestDone(ctx context.Context, mode, policy string, elapsed time.Duration) {
	r.duration.Record(nonNil(ctx), elapsed.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("policy", policy),
	))
}

func nonNil(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
