package xpolicy

import "errors"

// 策略解析与规则构建相关错误。
var (
	// ErrEmptyPolicy 策略名称为空。
	ErrEmptyPolicy = errors.New("xpolicy: empty policy value")

	// ErrInvalidPolicy 策略取值或名称非法。
	ErrInvalidPolicy = errors.New("xpolicy: invalid policy")

	// ErrNilRule 规则为 nil。
	ErrNilRule = errors.New("xpolicy: rule must not be nil")

	// ErrInvalidRate 采样比率不在 [0.0, 1.0] 范围内。
	ErrInvalidRate = errors.New("xpolicy: sampling rate must be in [0.0, 1.0]")

	// ErrInvalidCIDR 客户端地址段无法解析。
	ErrInvalidCIDR = errors.New("xpolicy: invalid client cidr")

	// ErrInvalidPattern URI 正则表达式无法编译。
	ErrInvalidPattern = errors.New("xpolicy: invalid uri pattern")

	// ErrRegoCompile Rego 模块编译失败。
	ErrRegoCompile = errors.New("xpolicy: rego compile failed")

	// ErrRegoResult Rego 查询结果无法解释为策略。
	ErrRegoResult = errors.New("xpolicy: unexpected rego result")
)
