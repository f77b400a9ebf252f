package xtimer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// manualClock 测试用手动时钟。
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStopwatch(t *testing.T) {
	clock := newManualClock()
	sw := StartNew(clock)
	assert.True(t, sw.IsRunning())
	assert.Equal(t, clock.Now(), sw.StartTime())
	assert.Zero(t, sw.Elapsed())

	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, sw.Elapsed())

	total := sw.Stop()
	assert.Equal(t, 150*time.Millisecond, total)
	assert.False(t, sw.IsRunning())

	clock.Advance(time.Second)
	assert.Equal(t, total, sw.Elapsed(), "elapsed is frozen after stop")
	assert.Equal(t, total, sw.Stop())
}

func TestStopwatch_ClockGoingBackwards(t *testing.T) {
	clock := newManualClock()
	sw := StartNew(clock)
	clock.Advance(-time.Second)
	assert.Zero(t, sw.Elapsed())
}

func TestStopwatch_SystemClock(t *testing.T) {
	sw := StartNew(nil)
	prev := sw.Elapsed()
	for range 100 {
		cur := sw.Elapsed()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestNewExecutionTimer(t *testing.T) {
	_, err := NewExecutionTimer(nil)
	assert.ErrorIs(t, err, ErrNotStarted)

	sw := StartNew(nil)
	sw.Stop()
	_, err = NewExecutionTimer(sw)
	assert.ErrorIs(t, err, ErrNotStarted)

	timer, err := NewExecutionTimer(StartNew(nil))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, timer.Record(), time.Duration(0))
}

func TestExecutionTimer_Records(t *testing.T) {
	clock := newManualClock()
	sw := StartNew(clock)
	timer, err := NewExecutionTimer(sw)
	require.NoError(t, err)

	clock.Advance(10 * time.Millisecond)
	p := timer.Point()
	assert.Equal(t, 10*time.Millisecond, p.Offset)
	assert.Zero(t, p.Duration)
	assert.Equal(t, sw.StartTime().Add(10*time.Millisecond), p.StartTime)

	offset := timer.Start()
	clock.Advance(25 * time.Millisecond)
	r := timer.Stop(offset)
	assert.Equal(t, 10*time.Millisecond, r.Offset)
	assert.Equal(t, 25*time.Millisecond, r.Duration)
	assert.Equal(t, r.StartTime.Add(25*time.Millisecond), r.EndTime())

	r = timer.Time(func() { clock.Advance(5 * time.Millisecond) })
	assert.Equal(t, 35*time.Millisecond, r.Offset)
	assert.Equal(t, 5*time.Millisecond, r.Duration)

	r = timer.Time(nil)
	assert.Zero(t, r.Duration)

	// offset 在未来时时长截断为 0
	r = timer.Stop(time.Hour)
	assert.Zero(t, r.Duration)
}

func TestExecutionTimer_ReadingsAfterStop(t *testing.T) {
	clock := newManualClock()
	sw := StartNew(clock)
	timer, err := NewExecutionTimer(sw)
	require.NoError(t, err)

	clock.Advance(time.Second)
	sw.Stop()
	clock.Advance(time.Second)
	assert.Equal(t, time.Second, timer.Record())
}

func TestExport(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	clock := newManualClock()
	timer, err := NewExecutionTimer(StartNew(clock))
	require.NoError(t, err)

	clock.Advance(3 * time.Millisecond)
	offset := timer.Start()
	clock.Advance(7 * time.Millisecond)
	r := timer.Stop(offset)

	Export(context.Background(), tp.Tracer("test"), "db.query", r, attribute.String("db", "orders"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.query", spans[0].Name)
	assert.Equal(t, r.StartTime, spans[0].StartTime)
	assert.Equal(t, r.EndTime(), spans[0].EndTime)
	assert.Contains(t, spans[0].Attributes, attribute.String("db", "orders"))
	assert.Contains(t, spans[0].Attributes, attribute.Int64("xdiag.timer.offset_ns", (3 * time.Millisecond).Nanoseconds()))
}

func TestExport_Defaults(t *testing.T) {
	var nilCtx context.Context
	assert.NotPanics(t, func() {
		Export(nilCtx, nil, "noop", Result{StartTime: time.Now()})
	})
}

func TestClockFunc(t *testing.T) {
	fixed := time.Unix(100, 0)
	var c Clock = ClockFunc(func() time.Time { return fixed })
	assert.Equal(t, fixed, c.Now())
	assert.False(t, SystemClock().Now().IsZero())
}
