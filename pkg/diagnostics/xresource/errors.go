package xresource

import "errors"

var (
	// ErrNilEndpoint 被包装的分类器为 nil。
	ErrNilEndpoint = errors.New("xresource: nil endpoint")

	// ErrInvalidSize 缓存大小必须大于 0。
	ErrInvalidSize = errors.New("xresource: cache size must be greater than 0")
)
