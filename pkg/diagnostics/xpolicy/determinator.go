package xpolicy

import (
	"fmt"
)

//go:generate mockgen -source=determinator.go -destination=xpolicymock/determinator.go -package=xpolicymock

// Determinator 根据生命周期事件、当前策略和请求元数据计算候选策略。
//
// 实现必须是输入的纯函数：不保存调用间状态，调用本身没有可观察的副作用。
// 请求上下文会把同一个 Determinator 用于真实的策略迁移和只读的脚本注入预判，
// 预判的结果会被丢弃，因此有状态的实现会破坏"预判无副作用"的契约。
type Determinator interface {
	Determine(event Event, current Policy, req RequestMetadata) Policy
}

// DeterminatorFunc 函数适配器。
type DeterminatorFunc func(event Event, current Policy, req RequestMetadata) Policy

// Determine 实现 Determinator。
func (f DeterminatorFunc) Determine(event Event, current Policy, req RequestMetadata) Policy {
	return f(event, current, req)
}

// Fixed 返回始终给出 min(p, current) 的 Determinator。
func Fixed(p Policy) Determinator {
	return DeterminatorFunc(func(_ Event, current Policy, _ RequestMetadata) Policy {
		return Min(p, current)
	})
}

// Rule 单条策略规则。
//
// Execute 返回该规则允许的最宽松策略（上限），Chain 取所有适用规则上限的最小值。
// 返回错误时 Chain 按 Off 处理。
type Rule interface {
	// Name 规则名，用于日志和错误信息。
	Name() string
	// ExecuteOn 规则适用的事件集合。
	ExecuteOn() Event
	// Execute 计算规则上限。
	Execute(req RequestMetadata) (Policy, error)
}

// RuleErrorFunc 规则执行失败回调。
type RuleErrorFunc func(rule string, event Event, err error)

// ChainOption Chain 配置选项。
type ChainOption func(*Chain)

// WithOnRuleError 设置规则失败回调。回调 panic 会被隔离。
func WithOnRuleError(fn RuleErrorFunc) ChainOption {
	return func(c *Chain) {
		c.onRuleError = fn
	}
}

// Chain 由多条 Rule 组成的 Determinator。
//
// 对给定事件：依次执行 ExecuteOn 包含该事件的规则，结果取
// min(current, rule1, rule2, ...)；一旦降到 Off 立即停止。
// 规则失败（返回错误或 panic）时按 Off 处理（fail closed）。
//
// Chain 构建后只读，可被多个请求并发使用。
type Chain struct {
	rules       []Rule
	onRuleError RuleErrorFunc
}

var _ Determinator = (*Chain)(nil)

// NewChain 创建规则链。nil 规则返回 ErrNilRule。
func NewChain(rules []Rule, opts ...ChainOption) (*Chain, error) {
	c := &Chain{rules: make([]Rule, 0, len(rules))}
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilRule, i)
		}
		c.rules = append(c.rules, r)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Rules 返回规则列表副本。
func (c *Chain) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Determine 实现 Determinator。
func (c *Chain) Determine(event Event, current Policy, req RequestMetadata) Policy {
	result := current
	for _, r := range c.rules {
		if result == Off {
			break
		}
		if !r.ExecuteOn().Has(event) {
			continue
		}
		ceiling, err := c.execute(r, req)
		if err != nil {
			c.reportError(r.Name(), event, err)
			return Off
		}
		if !ceiling.IsValid() {
			c.reportError(r.Name(), event, fmt.Errorf("%w: %d", ErrInvalidPolicy, uint8(ceiling)))
			return Off
		}
		result = Min(result, ceiling)
	}
	return result
}

// execute 执行单条规则，把 panic 转换为错误。
func (c *Chain) execute(r Rule, req RequestMetadata) (p Policy, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p, err = Off, fmt.Errorf("xpolicy: rule %s panicked: %v", r.Name(), rec)
		}
	}()
	return r.Execute(req)
}

func (c *Chain) reportError(rule string, event Event, err error) {
	if c.onRuleError == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	c.onRuleError(rule, event, err)
}
