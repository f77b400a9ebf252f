package xdiag

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
	"github.com/omeyang/xdiag/pkg/diagnostics/xresource"
	"github.com/omeyang/xdiag/pkg/diagnostics/xscript"
	"github.com/omeyang/xdiag/pkg/diagnostics/xtimer"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
	"github.com/omeyang/xdiag/pkg/observability/xmetrics"
	"github.com/omeyang/xdiag/pkg/util/xid"
)

type options struct {
	defaultPolicy xpolicy.Policy
	baseURI       string
	resourceName  string
	endpoint      xresource.EndpointConfig
	determinator  xpolicy.Determinator
	generator     xscript.Generator
	onScriptError xscript.ErrorFunc
	breaker       *xscript.BreakerSettings

	logger   xlog.Logger
	recorder xmetrics.Recorder
	tracer   trace.Tracer
	idFunc   xid.Func
	clock    xtimer.Clock
}

func defaultOptions() *options {
	return &options{
		defaultPolicy: xpolicy.On,
		baseURI:       DefaultBaseURI,
		resourceName:  xresource.DefaultResourceName,
		recorder:      xmetrics.NoopRecorder{},
		idFunc:        xid.UUID,
		clock:         xtimer.SystemClock(),
	}
}

// Option Runtime 配置选项。
type Option func(*options)

// WithDefaultPolicy 设置请求的初始策略，默认 On。
func WithDefaultPolicy(p xpolicy.Policy) Option {
	return func(o *options) { o.defaultPolicy = p }
}

// WithBaseURI 设置诊断端点根路径，默认 "/glimpse"。
func WithBaseURI(uri string) Option {
	return func(o *options) { o.baseURI = uri }
}

// WithEndpoint 设置资源端点分类器，默认按资源名匹配路径。
func WithEndpoint(e xresource.EndpointConfig) Option {
	return func(o *options) { o.endpoint = e }
}

// WithDeterminator 设置策略决定器，默认保持当前策略。
func WithDeterminator(d xpolicy.Determinator) Option {
	return func(o *options) { o.determinator = d }
}

// WithScriptGenerator 设置脚本标签生成器，默认输出客户端脚本标签。
func WithScriptGenerator(g xscript.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithOnScriptError 设置脚本生成失败回调。
func WithOnScriptError(fn xscript.ErrorFunc) Option {
	return func(o *options) { o.onScriptError = fn }
}

// WithScriptBreaker 用熔断器包装脚本生成器。
func WithScriptBreaker(s xscript.BreakerSettings) Option {
	return func(o *options) { o.breaker = &s }
}

// WithLogger 设置 Logger，默认丢弃。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder 设置指标记录器。
func WithRecorder(r xmetrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithTracer 设置导出请求计时 span 的 Tracer，默认使用全局 TracerProvider。
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithIDFunc 设置请求 ID 生成函数，默认 xid.UUID。
func WithIDFunc(fn xid.Func) Option {
	return func(o *options) {
		if fn != nil {
			o.idFunc = fn
		}
	}
}

// WithClock 设置计时时间源。
func WithClock(c xtimer.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}
