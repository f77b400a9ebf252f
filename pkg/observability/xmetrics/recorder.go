package xmetrics

import (
	"context"
	"time"
)

// 脚本标签门控结果
const (
	OutcomeEmitted    = "emitted"    // 已生成
	OutcomeSuppressed = "suppressed" // 策略不允许，未调用生成器
	OutcomeFailed     = "failed"     // 生成失败，已上报
)

// Recorder 诊断指标记录接口，实现必须并发安全。
type Recorder interface {
	PolicyChanged(ctx context.Context, from, to string)
	PolicyViolation(ctx context.Context, current, requested string)
	ScriptTags(ctx context.Context, outcome string)
	RequestDone(ctx context.Context, mode, policy string, elapsed time.Duration)
}

// NoopRecorder 不记录任何指标。
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) PolicyChanged(context.Context, string, string)              {}
func (NoopRecorder) PolicyViolation(context.Context, string, string)            {}
func (NoopRecorder) ScriptTags(context.Context, string)                         {}
func (NoopRecorder) RequestDone(context.Context, string, string, time.Duration) {}
