package xreqctx

import "errors"

var (
	// ErrInvalidArgument 构造参数或策略值无效。
	ErrInvalidArgument = errors.New("xreqctx: invalid argument")

	// ErrInvalidState 计时器状态不允许该操作。
	ErrInvalidState = errors.New("xreqctx: invalid state")

	// ErrPolicyViolation 试图放宽策略。
	ErrPolicyViolation = errors.New("xreqctx: policy violation")
)
