package xtimer

import "time"

// Result 一次计时记录，创建后不可变。
type Result struct {
	// StartTime 记录开始的墙上时间（Stopwatch 启动时间 + Offset）。
	StartTime time.Time
	// Offset 相对 Stopwatch 零点的偏移。
	Offset time.Duration
	// Duration 持续时长。
	Duration time.Duration
}

// EndTime 返回记录结束的墙上时间。
func (r Result) EndTime() time.Time { return r.StartTime.Add(r.Duration) }

// ExecutionTimer 绑定到一个已启动的 Stopwatch，所有读数共享同一个零点。
type ExecutionTimer struct {
	sw *Stopwatch
}

// NewExecutionTimer 创建 ExecutionTimer。sw 为 nil 或未运行时返回 ErrNotStarted。
func NewExecutionTimer(sw *Stopwatch) (*ExecutionTimer, error) {
	if sw == nil || !sw.IsRunning() {
		return nil, ErrNotStarted
	}
	return &ExecutionTimer{sw: sw}, nil
}

// Record 返回自零点以来经过的时间。连续调用的读数非递减。
func (t *ExecutionTimer) Record() time.Duration {
	return t.sw.Elapsed()
}

// Point 返回当前时刻的零时长记录。
func (t *ExecutionTimer) Point() Result {
	return t.result(t.Record(), 0)
}

// Start 返回当前偏移，作为之后 Stop 的参数。
func (t *ExecutionTimer) Start() time.Duration {
	return t.Record()
}

// Stop 返回从 offset 到现在的记录。
func (t *ExecutionTimer) Stop(offset time.Duration) Result {
	now := t.Record()
	d := now - offset
	if d < 0 {
		d = 0
	}
	return t.result(offset, d)
}

// Time 执行 fn 并返回其耗时记录。fn 为 nil 时返回零时长记录。
func (t *ExecutionTimer) Time(fn func()) Result {
	offset := t.Start()
	if fn != nil {
		fn()
	}
	return t.Stop(offset)
}

func (t *ExecutionTimer) result(offset, d time.Duration) Result {
	return Result{
		StartTime: t.sw.StartTime().Add(offset),
		Offset:    offset,
		Duration:  d,
	}
}
