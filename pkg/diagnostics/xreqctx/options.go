package xreqctx

import (
	"github.com/omeyang/xdiag/pkg/diagnostics/xtimer"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
	"github.com/omeyang/xdiag/pkg/observability/xmetrics"
	"github.com/omeyang/xdiag/pkg/util/xid"
)

type options struct {
	idFunc   xid.Func
	logger   xlog.Logger
	recorder xmetrics.Recorder
	clock    xtimer.Clock
}

func defaultOptions() *options {
	return &options{
		idFunc:   xid.UUID,
		logger:   xlog.Discard(),
		recorder: xmetrics.NoopRecorder{},
		clock:    xtimer.SystemClock(),
	}
}

// Option RequestContext 配置选项。
type Option func(*options)

// WithIDFunc 设置请求 ID 生成函数，默认 xid.UUID。
func WithIDFunc(fn xid.Func) Option {
	return func(o *options) {
		if fn != nil {
			o.idFunc = fn
		}
	}
}

// WithLogger 设置 Logger，默认丢弃。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder 设置指标记录器，默认不记录。
func WithRecorder(r xmetrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithClock 设置计时器时间源，默认 xtimer.SystemClock()。
func WithClock(c xtimer.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}
