package xreqctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omeyang/xdiag/pkg/context/xctx"
	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
	"github.com/omeyang/xdiag/pkg/diagnostics/xresource"
	"github.com/omeyang/xdiag/pkg/diagnostics/xscript"
	"github.com/omeyang/xdiag/pkg/diagnostics/xstore"
	"github.com/omeyang/xdiag/pkg/diagnostics/xtimer"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
	"github.com/omeyang/xdiag/pkg/observability/xmetrics"
)

// Params RequestContext 构造参数。
type Params struct {
	// Request 请求元数据适配器，必填。
	Request xpolicy.RequestMetadata
	// InitialPolicy 初始策略，必须是有效值。
	InitialPolicy xpolicy.Policy
	// Endpoint 资源端点分类器，必填。
	Endpoint xresource.EndpointConfig
	// EndpointBaseURI 诊断端点根路径，不能为空。
	EndpointBaseURI string
	// Determinator 策略决定器，必填。
	Determinator xpolicy.Determinator
	// ScriptGenerator 脚本标签生成器，必填。
	ScriptGenerator xscript.Generator
	// OnScriptError 脚本生成失败回调，可选。
	OnScriptError xscript.ErrorFunc
}

// RequestContext 单个请求的诊断状态。
type RequestContext struct {
	id           string
	mode         Mode
	request      xpolicy.RequestMetadata
	baseURI      string
	determinator xpolicy.Determinator
	policy       xpolicy.Policy
	store        *xstore.Store
	scripts      *xscript.Provider

	state     TimingState
	stopwatch *xtimer.Stopwatch
	timer     *xtimer.ExecutionTimer

	clock    xtimer.Clock
	logger   xlog.Logger
	recorder xmetrics.Recorder
}

// New 创建 RequestContext。
//
// Request、Endpoint、Determinator、ScriptGenerator 为 nil，EndpointBaseURI 为空，
// 或 InitialPolicy 无效时返回 ErrInvalidArgument，错误信息包含参数名。
func New(p Params, opts ...Option) (*RequestContext, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	id, err := o.idFunc()
	if err != nil {
		return nil, fmt.Errorf("xreqctx: generate request id: %w", err)
	}
	if id == "" {
		return nil, errors.New("xreqctx: generate request id: empty id")
	}

	mode := RegularRequest
	if p.Endpoint.IsResourceRequest(p.Request.RequestURI(), p.EndpointBaseURI) {
		mode = ResourceRequest
	}

	rc := &RequestContext{
		id:           id,
		mode:         mode,
		request:      p.Request,
		baseURI:      p.EndpointBaseURI,
		determinator: p.Determinator,
		policy:       p.InitialPolicy,
		store:        xstore.New(),
		clock:        o.clock,
		recorder:     o.recorder,
		logger: o.logger.With(
			slog.String(xctx.KeyDiagRequestID, id),
			slog.String(xctx.KeyDiagRequestMode, mode.String()),
		),
	}

	scripts, err := xscript.NewProvider(id,
		&recordingGenerator{inner: p.ScriptGenerator, rc: rc},
		rc.isScriptInjectionAllowed,
		rc.scriptErrorHandler(p.OnScriptError),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	rc.scripts = scripts

	return rc, nil
}

func (p *Params) validate() error {
	switch {
	case p.Request == nil:
		return invalidArgument("request", "must not be nil")
	case p.Endpoint == nil:
		return invalidArgument("endpoint", "must not be nil")
	case p.Determinator == nil:
		return invalidArgument("determinator", "must not be nil")
	case strings.TrimSpace(p.EndpointBaseURI) == "":
		return invalidArgument("endpointBaseURI", "must not be empty")
	case !p.InitialPolicy.IsValid():
		return invalidArgument("initialPolicy", p.InitialPolicy.String()+" is not a valid policy")
	case p.ScriptGenerator == nil:
		return invalidArgument("scriptGenerator", "must not be nil")
	}
	return nil
}

func invalidArgument(param, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidArgument, param, reason)
}

// ID 返回请求 ID。
func (rc *RequestContext) ID() string { return rc.id }

// Mode 返回请求处理模式。
func (rc *RequestContext) Mode() Mode { return rc.mode }

// Request 返回请求元数据。
func (rc *RequestContext) Request() xpolicy.RequestMetadata { return rc.request }

// EndpointBaseURI 返回诊断端点根路径。
func (rc *RequestContext) EndpointBaseURI() string { return rc.baseURI }

// Store 返回请求级键值存储。
func (rc *RequestContext) Store() *xstore.Store { return rc.store }

// ScriptTags 返回脚本标签提供者。
func (rc *RequestContext) ScriptTags() *xscript.Provider { return rc.scripts }

// GetScriptTags 等价于 ScriptTags().GetScriptTags()。
func (rc *RequestContext) GetScriptTags() []string { return rc.scripts.GetScriptTags() }

// Policy 返回当前策略。
func (rc *RequestContext) Policy() xpolicy.Policy { return rc.policy }

// SetPolicy 设置策略。
//
// p 比当前策略更宽松时返回 ErrPolicyViolation，状态不变；p 无效时返回
// ErrInvalidArgument；与当前相同时不做任何事。
func (rc *RequestContext) SetPolicy(p xpolicy.Policy) error {
	if !p.IsValid() {
		return invalidArgument("policy", p.String()+" is not a valid policy")
	}
	current := rc.policy
	if p > current {
		rc.logger.Error(context.Background(), "attempt to widen diagnostic policy",
			slog.String("current", current.String()),
			slog.String("requested", p.String()),
		)
		rc.recorder.PolicyViolation(context.Background(), current.String(), p.String())
		return fmt.Errorf("%w: cannot change %s to more permissive %s", ErrPolicyViolation, current, p)
	}
	if p == current {
		return nil
	}
	rc.policy = p
	rc.logger.Debug(context.Background(), "diagnostic policy narrowed",
		slog.String("from", current.String()),
		slog.String("to", p.String()),
	)
	rc.recorder.PolicyChanged(context.Background(), current.String(), p.String())
	return nil
}

// ApplyEvent 以 event 调用 Determinator 并把结果写入策略。
//
// 结果先与当前策略取较小值，所以 Determinator 返回更宽松的值不会报错。
func (rc *RequestContext) ApplyEvent(event xpolicy.Event) (xpolicy.Policy, error) {
	next := xpolicy.Min(rc.determine(event), rc.policy)
	if err := rc.SetPolicy(next); err != nil {
		return rc.policy, err
	}
	return rc.policy, nil
}

// determine 调用 Determinator，panic 或无效结果按 Off 处理。
func (rc *RequestContext) determine(event xpolicy.Event) (p xpolicy.Policy) {
	defer func() {
		if r := recover(); r != nil {
			rc.logger.Error(context.Background(), "policy determinator panicked",
				slog.String(xlog.KeyEvent, event.String()),
				slog.Any("panic", r),
			)
			p = xpolicy.Off
		}
	}()
	p = rc.determinator.Determine(event, rc.policy, rc.request)
	if !p.IsValid() {
		rc.logger.Error(context.Background(), "policy determinator returned invalid policy",
			slog.String(xlog.KeyEvent, event.String()),
			slog.String(xlog.KeyPolicy, p.String()),
		)
		return xpolicy.Off
	}
	return p
}

// isScriptInjectionAllowed 以 EndRequest 事件预判策略，不修改 currentPolicy。
// 预判结果与当前策略取较小值后只检查 DisplayClient 标志。
func (rc *RequestContext) isScriptInjectionAllowed() bool {
	preview := xpolicy.Min(rc.determine(xpolicy.EventEndRequest), rc.policy)
	allowed := preview.Has(xpolicy.DisplayClient)
	if !allowed {
		rc.recorder.ScriptTags(context.Background(), xmetrics.OutcomeSuppressed)
	}
	return allowed
}

func (rc *RequestContext) scriptErrorHandler(user xscript.ErrorFunc) xscript.ErrorFunc {
	return func(requestID string, err error) {
		rc.logger.Warn(context.Background(), "script tag generation failed", xlog.Err(err))
		rc.recorder.ScriptTags(context.Background(), xmetrics.OutcomeFailed)
		if user != nil {
			user(requestID, err)
		}
	}
}

// recordingGenerator 在生成成功时记录指标。
type recordingGenerator struct {
	inner xscript.Generator
	rc    *RequestContext
}

func (g *recordingGenerator) Generate(requestID string) ([]string, error) {
	tags, err := g.inner.Generate(requestID)
	if err == nil {
		g.rc.recorder.ScriptTags(context.Background(), xmetrics.OutcomeEmitted)
	}
	return tags, err
}

// TimingState 返回计时状态。
func (rc *RequestContext) TimingState() TimingState { return rc.state }

// StartTiming 启动计时器。非 NotStarted 状态返回 ErrInvalidState。
func (rc *RequestContext) StartTiming() error {
	if rc.state != TimingNotStarted {
		return fmt.Errorf("%w: timing already started (state %s)", ErrInvalidState, rc.state)
	}
	sw := xtimer.StartNew(rc.clock)
	timer, err := xtimer.NewExecutionTimer(sw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	rc.stopwatch = sw
	rc.timer = timer
	rc.state = TimingRunning
	return nil
}

// StopTiming 停止计时器并返回总耗时。非 Running 状态返回 ErrInvalidState。
func (rc *RequestContext) StopTiming() (time.Duration, error) {
	if rc.state != TimingRunning {
		return 0, fmt.Errorf("%w: timing not running (state %s)", ErrInvalidState, rc.state)
	}
	elapsed := rc.stopwatch.Stop()
	rc.state = TimingStopped
	return elapsed, nil
}

// CurrentTimer 返回共享计时器。NotStarted 状态返回 ErrInvalidState。
func (rc *RequestContext) CurrentTimer() (*xtimer.ExecutionTimer, error) {
	if rc.timer == nil {
		return nil, fmt.Errorf("%w: timer not available", ErrInvalidState)
	}
	return rc.timer, nil
}
