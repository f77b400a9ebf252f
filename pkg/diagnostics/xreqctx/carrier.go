package xreqctx

import (
	"context"

	"github.com/omeyang/xdiag/pkg/context/xctx"
)

type contextKey struct{}

// NewContext 返回携带 rc 的 context，同时写入 xctx 诊断字段供日志使用。
// 策略字段读取 rc 的当前值，不是写入时的快照。
// ctx 为 nil 时使用 context.Background()；rc 为 nil 时原样返回 ctx。
func NewContext(ctx context.Context, rc *RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if rc == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, contextKey{}, rc)
	// ctx 已确保非 nil，xctx 不会返回错误
	ctx, _ = xctx.WithDiagRequestID(ctx, rc.ID())
	ctx, _ = xctx.WithDiagRequestMode(ctx, rc.Mode().String())
	ctx, _ = xctx.WithDiagPolicyFunc(ctx, func() string { return rc.Policy().String() })
	return ctx
}

// FromContext 取出 NewContext 写入的 RequestContext。
func FromContext(ctx context.Context) (*RequestContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(contextKey{}).(*RequestContext)
	return rc, ok && rc != nil
}
