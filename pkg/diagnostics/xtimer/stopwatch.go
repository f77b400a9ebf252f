package xtimer

import (
	"sync"
	"time"
)

// Stopwatch 单调计时器，创建即开始运行，只能停止一次。
type Stopwatch struct {
	clock Clock
	start time.Time

	mu      sync.RWMutex
	stopped bool
	total   time.Duration
}

// StartNew 创建并启动 Stopwatch。clock 为 nil 时使用 SystemClock。
func StartNew(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock()
	}
	return &Stopwatch{clock: clock, start: clock.Now()}
}

// StartTime 返回启动时刻。
func (s *Stopwatch) StartTime() time.Time { return s.start }

// IsRunning 报告是否仍在运行。
func (s *Stopwatch) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.stopped
}

// Elapsed 返回已经过的时间。停止后返回停止时的总耗时。
// 结果永远非负。
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return s.total
	}
	return s.since()
}

// Stop 停止计时并返回总耗时。
//
// 重复调用不会重新计时，返回第一次停止时的总耗时；
// 调用方应只停止一次，状态校验由上层负责。
func (s *Stopwatch) Stop() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.total = s.since()
		s.stopped = true
	}
	return s.total
}

func (s *Stopwatch) since() time.Duration {
	d := s.clock.Now().Sub(s.start)
	if d < 0 {
		return 0
	}
	return d
}
