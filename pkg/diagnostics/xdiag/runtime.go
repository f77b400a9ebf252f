package xdiag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
	"github.com/omeyang/xdiag/pkg/diagnostics/xreqctx"
	"github.com/omeyang/xdiag/pkg/diagnostics/xresource"
	"github.com/omeyang/xdiag/pkg/diagnostics/xscript"
	"github.com/omeyang/xdiag/pkg/diagnostics/xtimer"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
	"github.com/omeyang/xdiag/pkg/observability/xmetrics"
	"github.com/omeyang/xdiag/pkg/util/xid"
)

// DefaultBaseURI 诊断端点默认根路径。
const DefaultBaseURI = "/glimpse"

// RequestSpanName 请求计时 span 名称。
const RequestSpanName = "xdiag.request"

// Runtime 诊断运行时。
type Runtime struct {
	defaultPolicy xpolicy.Policy
	baseURI       string
	endpoint      xresource.EndpointConfig
	determinator  xpolicy.Determinator
	generator     xscript.Generator
	onScriptError xscript.ErrorFunc

	logger   xlog.Logger
	recorder xmetrics.Recorder
	tracer   trace.Tracer
	idFunc   xid.Func
	clock    xtimer.Clock

	closers []func() error
}

// New 创建 Runtime。默认策略无效或根路径为空时返回 xreqctx.ErrInvalidArgument。
func New(opts ...Option) (*Runtime, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return newRuntime(o)
}

func newRuntime(o *options) (*Runtime, error) {
	if !o.defaultPolicy.IsValid() {
		return nil, fmt.Errorf("%w: default policy %s", xreqctx.ErrInvalidArgument, o.defaultPolicy)
	}
	if strings.TrimSpace(o.baseURI) == "" {
		return nil, fmt.Errorf("%w: base uri must not be empty", xreqctx.ErrInvalidArgument)
	}

	rt := &Runtime{
		defaultPolicy: o.defaultPolicy,
		baseURI:       o.baseURI,
		endpoint:      o.endpoint,
		determinator:  o.determinator,
		generator:     o.generator,
		onScriptError: o.onScriptError,
		logger:        o.logger,
		recorder:      o.recorder,
		tracer:        o.tracer,
		idFunc:        o.idFunc,
		clock:         o.clock,
	}
	if rt.logger == nil {
		rt.logger = xlog.Discard()
	}
	rt.logger = rt.logger.With(xlog.Component("xdiag"))

	if rt.endpoint == nil {
		rt.endpoint = xresource.PathEndpoint{Name: o.resourceName}
	}
	if rt.determinator == nil {
		rt.determinator = xpolicy.Fixed(xpolicy.On)
	}
	if rt.generator == nil {
		rt.generator = ClientScriptGenerator(rt.baseURI, o.resourceName)
	}
	if o.breaker != nil {
		bs := *o.breaker
		bs.OnStateChange = rt.breakerStateChanged(bs.OnStateChange)
		bg, err := xscript.NewBreakerGenerator(rt.generator, bs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", xreqctx.ErrInvalidArgument, err)
		}
		rt.generator = bg
	}
	return rt, nil
}

func (rt *Runtime) breakerStateChanged(user func(name, from, to string)) func(name, from, to string) {
	return func(name, from, to string) {
		rt.logger.Warn(context.Background(), "script generator breaker state changed",
			slog.String("breaker", name),
			slog.String("from", from),
			slog.String("to", to),
		)
		if user != nil {
			user(name, from, to)
		}
	}
}

// DefaultPolicy 返回请求的初始策略。
func (rt *Runtime) DefaultPolicy() xpolicy.Policy { return rt.defaultPolicy }

// BaseURI 返回诊断端点根路径。
func (rt *Runtime) BaseURI() string { return rt.baseURI }

// Determinator 返回策略决定器。
func (rt *Runtime) Determinator() xpolicy.Determinator { return rt.determinator }

// BeginRequest 为 req 创建 RequestContext，以 BeginRequest 事件收窄默认策略，
// 策略不为 Off 时启动计时。返回的 ctx 携带该 RequestContext。
func (rt *Runtime) BeginRequest(ctx context.Context, req xpolicy.RequestMetadata) (context.Context, *xreqctx.RequestContext, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rc, err := xreqctx.New(xreqctx.Params{
		Request:         req,
		InitialPolicy:   rt.defaultPolicy,
		Endpoint:        rt.endpoint,
		EndpointBaseURI: rt.baseURI,
		Determinator:    rt.determinator,
		ScriptGenerator: rt.generator,
		OnScriptError:   rt.onScriptError,
	},
		xreqctx.WithIDFunc(rt.idFunc),
		xreqctx.WithLogger(rt.logger),
		xreqctx.WithRecorder(rt.recorder),
		xreqctx.WithClock(rt.clock),
	)
	if err != nil {
		return ctx, nil, err
	}

	policy, err := rc.ApplyEvent(xpolicy.EventBeginRequest)
	if err != nil {
		return ctx, nil, err
	}
	if policy > xpolicy.Off {
		if err := rc.StartTiming(); err != nil {
			return ctx, nil, err
		}
	}

	ctx = xreqctx.NewContext(ctx, rc)
	rt.logger.Debug(ctx, "diagnostic request begun",
		slog.String(xlog.KeyPath, req.RequestURI()),
		slog.String(xlog.KeyPolicy, policy.String()),
	)
	return ctx, rc, nil
}

// ExecuteResource 以 ExecuteResource 事件收窄策略，报告是否可以输出诊断资源：
// 请求被分类为资源请求且策略不为 Off。
func (rt *Runtime) ExecuteResource(ctx context.Context, rc *xreqctx.RequestContext) (bool, error) {
	if rc == nil {
		return false, fmt.Errorf("%w: request context must not be nil", xreqctx.ErrInvalidArgument)
	}
	policy, err := rc.ApplyEvent(xpolicy.EventExecuteResource)
	if err != nil {
		return false, err
	}
	allowed := rc.Mode() == xreqctx.ResourceRequest && policy > xpolicy.Off
	rt.logger.Debug(ctx, "diagnostic resource requested",
		slog.String(xlog.KeyPolicy, policy.String()),
		slog.Bool("allowed", allowed),
	)
	return allowed, nil
}

// EndRequest 以 EndRequest 事件收窄策略，计时运行中时停止计时并导出 span，
// 记录请求指标。返回最终策略和请求耗时（未计时为 0）。
func (rt *Runtime) EndRequest(ctx context.Context, rc *xreqctx.RequestContext) (xpolicy.Policy, time.Duration, error) {
	if rc == nil {
		return xpolicy.Off, 0, fmt.Errorf("%w: request context must not be nil", xreqctx.ErrInvalidArgument)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	policy, err := rc.ApplyEvent(xpolicy.EventEndRequest)
	if err != nil {
		return policy, 0, err
	}

	var elapsed time.Duration
	if rc.TimingState() == xreqctx.TimingRunning {
		if elapsed, err = rc.StopTiming(); err != nil {
			return policy, 0, err
		}
		timer, err := rc.CurrentTimer()
		if err != nil {
			return policy, elapsed, err
		}
		xtimer.Export(ctx, rt.tracer, RequestSpanName, timer.Stop(0),
			attribute.String("xdiag.request.id", rc.ID()),
			attribute.String("xdiag.request.mode", rc.Mode().String()),
			attribute.String("xdiag.policy", policy.String()),
		)
	}

	rt.recorder.RequestDone(ctx, rc.Mode().String(), policy.String(), elapsed)
	rt.logger.Debug(ctx, "diagnostic request ended",
		slog.String(xlog.KeyPolicy, policy.String()),
		xlog.Duration(elapsed),
	)
	return policy, elapsed, nil
}

// Close 释放 Runtime 持有的资源（如日志轮转文件）。可重复调用。
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
