package xtimer

import "errors"

var (
	// ErrNotStarted 表示 Stopwatch 为 nil 或尚未运行。
	ErrNotStarted = errors.New("xtimer: stopwatch not running")
)
