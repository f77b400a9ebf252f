package xtimer

import "time"

// Clock 时间源。Now 返回的 time.Time 应携带单调时钟读数（time.Now 满足）。
type Clock interface {
	Now() time.Time
}

// ClockFunc 函数适配为 Clock。
type ClockFunc func() time.Time

// Now 实现 Clock。
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回基于 time.Now 的时间源。
func SystemClock() Clock { return systemClock{} }
