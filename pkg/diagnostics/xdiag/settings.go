package xdiag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/omeyang/xdiag/pkg/config/xconf"
	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
	"github.com/omeyang/xdiag/pkg/diagnostics/xresource"
	"github.com/omeyang/xdiag/pkg/diagnostics/xscript"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
	"github.com/omeyang/xdiag/pkg/util/xid"
)

// ErrNilSettings NewFromSettings 的 settings 为 nil。
var ErrNilSettings = errors.New("xdiag: nil settings")

// NewFromSettings 按配置创建 Runtime。opts 在配置之后应用，可以覆盖配置项。
//
// 未通过 WithLogger 指定 Logger 时按 s.Log 构建，Close 时关闭其输出文件。
// 未通过 WithDeterminator 指定决定器时按 s.Rules 构建规则链。
func NewFromSettings(s *xconf.Settings, opts ...Option) (*Runtime, error) {
	if s == nil {
		return nil, ErrNilSettings
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	o.defaultPolicy = s.DefaultPolicy
	o.baseURI = s.Endpoint.BaseURI
	o.resourceName = s.Endpoint.ResourceName
	if s.Script.Breaker.Enabled {
		o.breaker = &xscript.BreakerSettings{
			MaxFailures: s.Script.Breaker.MaxFailures,
			OpenTimeout: s.Script.Breaker.OpenTimeout,
		}
	}
	idFunc, err := IDFunc(s.ID)
	if err != nil {
		return nil, err
	}
	o.idFunc = idFunc
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var closers []func() error
	if o.logger == nil {
		logger, cleanup, err := NewLogger(s.Log)
		if err != nil {
			return nil, err
		}
		o.logger = logger
		closers = append(closers, cleanup)
	}

	if o.endpoint == nil {
		var ep xresource.EndpointConfig = xresource.PathEndpoint{Name: o.resourceName}
		if s.Endpoint.CacheSize > 0 {
			cached, err := xresource.NewCachedEndpoint(ep, s.Endpoint.CacheSize)
			if err != nil {
				return nil, closeAll(closers, err)
			}
			ep = cached
		}
		o.endpoint = ep
	}

	if o.determinator == nil {
		logger := o.logger.With(xlog.Component("xpolicy"))
		chain, err := BuildChain(context.Background(), s, xpolicy.WithOnRuleError(
			func(rule string, event xpolicy.Event, err error) {
				logger.Warn(context.Background(), "policy rule failed, diagnostics disabled",
					slog.String(xlog.KeyRule, rule),
					slog.String(xlog.KeyEvent, event.String()),
					xlog.Err(err),
				)
			}))
		if err != nil {
			return nil, closeAll(closers, err)
		}
		o.determinator = chain
	}

	rt, err := newRuntime(o)
	if err != nil {
		return nil, closeAll(closers, err)
	}
	rt.closers = closers
	return rt, nil
}

func closeAll(closers []func() error, err error) error {
	errs := []error{err}
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// IDFunc 按配置返回请求 ID 生成函数。sonyflake 生成器的 opts 透传给 xid.NewGenerator。
func IDFunc(s xconf.IDSettings, opts ...xid.Option) (xid.Func, error) {
	switch strings.ToLower(s.Generator) {
	case "", xconf.IDGeneratorUUID:
		return xid.UUID, nil
	case xconf.IDGeneratorSonyflake:
		g, err := xid.NewGenerator(opts...)
		if err != nil {
			return nil, err
		}
		return g.NewString, nil
	default:
		return nil, fmt.Errorf("%w: id.generator: unknown generator %q", xconf.ErrInvalidSettings, s.Generator)
	}
}

// NewLogger 按日志配置构建 Logger。File 非空时写入轮转文件。
func NewLogger(s xconf.LogSettings) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().SetLevelString(s.Level).SetFormat(s.Format)
	if s.File != "" {
		b = b.SetRotation(s.File, xlog.Rotation{})
	}
	return b.Build()
}

// BuildRules 按配置构建策略规则，空配置项对应的规则不创建。
// Rego 模块文件按 s.ResolvePath 解析。
func BuildRules(ctx context.Context, s *xconf.Settings) ([]xpolicy.Rule, error) {
	r := s.Rules
	var rules []xpolicy.Rule

	if len(r.URIDeny) > 0 {
		rule, err := xpolicy.NewURIRule(r.URIDeny)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if len(r.ClientCIDRs) > 0 {
		rule, err := xpolicy.NewClientIPRule(r.ClientCIDRs)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if r.SamplingRate < 1 {
		rule, err := xpolicy.NewSamplingRule(r.SamplingRate, nil)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if r.ControlCookie != "" {
		rules = append(rules, xpolicy.NewControlCookieRule(r.ControlCookie))
	}
	if len(r.StatusCodes) > 0 {
		rules = append(rules, xpolicy.NewStatusCodeRule(r.StatusCodes, xpolicy.PersistResults))
	}
	if len(r.ContentTypes) > 0 {
		rules = append(rules, xpolicy.NewContentTypeRule(r.ContentTypes, xpolicy.PersistResults))
	}
	if r.Ajax {
		rules = append(rules, xpolicy.NewAjaxRule())
	}
	if r.Rego.ModuleFile != "" {
		path := s.ResolvePath(r.Rego.ModuleFile)
		module, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("xdiag: read rego module %s: %w", path, err)
		}
		rule, err := xpolicy.NewRegoRule(ctx, string(module), xpolicy.WithRegoQuery(r.Rego.Query))
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// BuildChain 按配置构建规则链。
func BuildChain(ctx context.Context, s *xconf.Settings, opts ...xpolicy.ChainOption) (*xpolicy.Chain, error) {
	rules, err := BuildRules(ctx, s)
	if err != nil {
		return nil, err
	}
	return xpolicy.NewChain(rules, opts...)
}
