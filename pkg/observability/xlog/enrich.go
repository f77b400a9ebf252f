package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/xdiag/pkg/context/xctx"
)

// ErrNilHandler base handler 为 nil。
var ErrNilHandler = errors.New("xlog: base handler is nil")

// EnrichHandler 从 context 提取诊断请求和追踪字段注入日志：
//   - diag: diag_request_id, diag_request_mode, diag_policy
//   - trace: trace_id, span_id
//
// 缺失的字段直接跳过。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 创建 EnrichHandler。
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给底层 handler
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

const maxEnrichAttrs = 5

// Handle 注入字段后交给底层 handler。按 slog 约定先 Clone 再修改 record。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := buf[:0]
	attrs = xctx.AppendDiagAttrs(attrs, ctx)
	attrs = xctx.AppendTraceAttrs(attrs, ctx)

	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的新 handler
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
