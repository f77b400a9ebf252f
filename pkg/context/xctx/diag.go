package xctx

import "context"

// Diag 日志属性 Key 常量
const (
	KeyDiagRequestID   = "diag_request_id"
	KeyDiagRequestMode = "diag_request_mode"
	KeyDiagPolicy      = "diag_policy"

	diagFieldCount = 3
)

const (
	keyDiagRequestID   = contextKey("xctx:diag_request_id")
	keyDiagRequestMode = contextKey("xctx:diag_request_mode")
	keyDiagPolicy      = contextKey("xctx:diag_policy")
)

// WithDiagRequestID 注入诊断请求 ID。ctx 为 nil 时返回 ErrNilContext。
func WithDiagRequestID(ctx context.Context, id string) (context.Context, error) {
	return withString(ctx, keyDiagRequestID, id)
}

// DiagRequestID 读取诊断请求 ID，不存在返回空字符串。
func DiagRequestID(ctx context.Context) string {
	return stringValue(ctx, keyDiagRequestID)
}

// RequireDiagRequestID 读取诊断请求 ID，不存在返回 ErrMissingDiagRequestID。
func RequireDiagRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := DiagRequestID(ctx)
	if v == "" {
		return "", ErrMissingDiagRequestID
	}
	return v, nil
}

// WithDiagRequestMode 注入请求处理模式。
func WithDiagRequestMode(ctx context.Context, mode string) (context.Context, error) {
	return withString(ctx, keyDiagRequestMode, mode)
}

// DiagRequestMode 读取请求处理模式。
func DiagRequestMode(ctx context.Context) string {
	return stringValue(ctx, keyDiagRequestMode)
}

// WithDiagPolicy 注入诊断策略名称。
func WithDiagPolicy(ctx context.Context, policy string) (context.Context, error) {
	return withString(ctx, keyDiagPolicy, policy)
}

// WithDiagPolicyFunc 注入诊断策略的读取函数，每次读取时调用 fn，
// 策略在请求中收窄后日志字段随之变化。fn 为 nil 时等同于未注入。
func WithDiagPolicyFunc(ctx context.Context, fn func() string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if fn == nil {
		return ctx, nil
	}
	return context.WithValue(ctx, keyDiagPolicy, fn), nil
}

// DiagPolicy 读取诊断策略名称。
func DiagPolicy(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	switch v := ctx.Value(keyDiagPolicy).(type) {
	case string:
		return v
	case func() string:
		return v()
	default:
		return ""
	}
}

// Diag 诊断字段的批量读取结果。
type Diag struct {
	RequestID   string
	RequestMode string
	Policy      string
}

// GetDiag 批量读取诊断字段。
func GetDiag(ctx context.Context) Diag {
	return Diag{
		RequestID:   DiagRequestID(ctx),
		RequestMode: DiagRequestMode(ctx),
		Policy:      DiagPolicy(ctx),
	}
}

func withString(ctx context.Context, key contextKey, v string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, v), nil
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
