package xscript

//go:generate mockgen -source=provider.go -destination=xscriptmock/generator.go -package=xscriptmock

import "fmt"

// Generator 为指定请求生成脚本标签。
type Generator interface {
	Generate(requestID string) ([]string, error)
}

// GeneratorFunc 函数适配为 Generator。
type GeneratorFunc func(requestID string) ([]string, error)

// Generate 实现 Generator。
func (f GeneratorFunc) Generate(requestID string) ([]string, error) { return f(requestID) }

// ErrorFunc 生成失败回调。
type ErrorFunc func(requestID string, err error)

// Provider 绑定到单个请求的脚本标签提供者。
//
// 除构造时的绑定外不持有状态，每次调用都重新求值谓词。
type Provider struct {
	requestID string
	gen       Generator
	allowed   func() bool
	onError   ErrorFunc
}

// NewProvider 创建 Provider。onError 可为 nil。
func NewProvider(requestID string, gen Generator, allowed func() bool, onError ErrorFunc) (*Provider, error) {
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if allowed == nil {
		return nil, ErrNilPredicate
	}
	return &Provider{
		requestID: requestID,
		gen:       gen,
		allowed:   allowed,
		onError:   onError,
	}, nil
}

// RequestID 返回绑定的请求 ID。
func (p *Provider) RequestID() string { return p.requestID }

// GetScriptTags 返回脚本标签。
//
// 谓词为 false 时返回 nil 且不调用生成器。生成失败时调用一次 onError 并返回 nil。
// 本方法从不返回错误，也不向外传播 panic。
func (p *Provider) GetScriptTags() []string {
	if !p.allowed() {
		return nil
	}
	tags, err := p.generate()
	if err != nil {
		p.report(err)
		return nil
	}
	return tags
}

func (p *Provider) generate() (tags []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tags, err = nil, fmt.Errorf("%w: %v", ErrGeneratorPanic, r)
		}
	}()
	return p.gen.Generate(p.requestID)
}

func (p *Provider) report(err error) {
	if p.onError == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	p.onError(p.requestID, err)
}
