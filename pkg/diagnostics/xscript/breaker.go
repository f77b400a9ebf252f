package xscript

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings 熔断生成器配置。
type BreakerSettings struct {
	// Name 熔断器名称，默认 "xdiag.script"。
	Name string
	// MaxFailures 连续失败多少次后打开熔断器，默认 5。
	MaxFailures uint32
	// OpenTimeout 打开状态持续多久后进入半开，默认 30s。
	OpenTimeout time.Duration
	// OnStateChange 状态变化回调，可为 nil。
	OnStateChange func(name, from, to string)
}

const (
	defaultBreakerName        = "xdiag.script"
	defaultBreakerMaxFailures = 5
	defaultBreakerOpenTimeout = 30 * time.Second
)

// BreakerGenerator 带熔断的生成器，可在多个请求间共享，并发安全。
type BreakerGenerator struct {
	gen Generator
	cb  *gobreaker.CircuitBreaker[[]string]
}

// NewBreakerGenerator 用熔断器包装 gen。gen 为 nil 时返回 ErrNilGenerator。
func NewBreakerGenerator(gen Generator, s BreakerSettings) (*BreakerGenerator, error) {
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if s.Name == "" {
		s.Name = defaultBreakerName
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = defaultBreakerMaxFailures
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = defaultBreakerOpenTimeout
	}

	maxFailures := s.MaxFailures
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	if s.OnStateChange != nil {
		onChange := s.OnStateChange
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			onChange(name, from.String(), to.String())
		}
	}

	return &BreakerGenerator{
		gen: gen,
		cb:  gobreaker.NewCircuitBreaker[[]string](st),
	}, nil
}

// Generate 实现 Generator。熔断器打开或半开请求过多时返回 ErrCircuitOpen。
func (b *BreakerGenerator) Generate(requestID string) ([]string, error) {
	tags, err := b.cb.Execute(func() ([]string, error) {
		return b.gen.Generate(requestID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, b.cb.Name())
	}
	return tags, err
}

// State 返回熔断器当前状态名称（closed / half-open / open）。
func (b *BreakerGenerator) State() string {
	return b.cb.State().String()
}
