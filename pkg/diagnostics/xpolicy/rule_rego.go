package xpolicy

import (
	"context"
	"fmt"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
)

// DefaultRegoQuery RegoRule 默认查询。
const DefaultRegoQuery = "data.xdiag.policy"

// RegoRule 用 OPA Rego 计算策略上限。
//
// 查询的结果必须是策略名称字符串（如 "Off"、"PersistResults"、"On"）；
// 查询无结果（undefined）视为不限制。输入文档结构：
//
//	{
//	  "uri": "...", "method": "GET", "client": "...",
//	  "status_code": 200, "content_type": "text/html",
//	  "client_ip": "127.0.0.1",
//	  "headers": {"x-requested-with": "..."}
//	}
//
// 示例模块：
//
//	package xdiag
//
//	default policy := "On"
//
//	policy := "Off" if startswith(input.uri, "/admin")
type RegoRule struct {
	query     rego.PreparedEvalQuery
	executeOn Event
	headers   []string
}

// RegoOption RegoRule 配置选项。
type RegoOption func(*regoOptions)

type regoOptions struct {
	query     string
	executeOn Event
	headers   []string
}

// WithRegoQuery 设置查询，默认 DefaultRegoQuery。
func WithRegoQuery(query string) RegoOption {
	return func(o *regoOptions) {
		if strings.TrimSpace(query) != "" {
			o.query = query
		}
	}
}

// WithRegoEvents 设置规则适用的事件，默认 BeginRequest|EndRequest。
func WithRegoEvents(events Event) RegoOption {
	return func(o *regoOptions) {
		if events != 0 {
			o.executeOn = events
		}
	}
}

// WithRegoHeaders 设置暴露给 Rego 的请求头（名称转为小写作为 key）。
func WithRegoHeaders(names ...string) RegoOption {
	return func(o *regoOptions) {
		o.headers = append(o.headers, names...)
	}
}

// NewRegoRule 编译 Rego 模块并准备查询。编译错误包装为 ErrRegoCompile。
func NewRegoRule(ctx context.Context, module string, opts ...RegoOption) (*RegoRule, error) {
	o := &regoOptions{
		query:     DefaultRegoQuery,
		executeOn: EventBeginRequest | EventEndRequest,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	pq, err := rego.New(
		rego.Query(o.query),
		rego.Module("xdiag.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegoCompile, err)
	}

	return &RegoRule{query: pq, executeOn: o.executeOn, headers: o.headers}, nil
}

// Name 实现 Rule。
func (r *RegoRule) Name() string { return "rego" }

// ExecuteOn 实现 Rule。
func (r *RegoRule) ExecuteOn() Event { return r.executeOn }

// Execute 实现 Rule。
//
// Rule 接口是同步、无取消语义的，求值使用 context.Background()。
func (r *RegoRule) Execute(req RequestMetadata) (Policy, error) {
	rs, err := r.query.Eval(context.Background(), rego.EvalInput(r.input(req)))
	if err != nil {
		return Off, fmt.Errorf("xpolicy: rego eval: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return On, nil
	}
	name, ok := rs[0].Expressions[0].Value.(string)
	if !ok {
		return Off, fmt.Errorf("%w: %T", ErrRegoResult, rs[0].Expressions[0].Value)
	}
	p, err := ParsePolicy(name)
	if err != nil {
		return Off, fmt.Errorf("%w: %w", ErrRegoResult, err)
	}
	return p, nil
}

func (r *RegoRule) input(req RequestMetadata) map[string]any {
	headers := make(map[string]any, len(r.headers))
	for _, h := range r.headers {
		headers[strings.ToLower(h)] = req.Header(h)
	}
	return map[string]any{
		"uri":          req.RequestURI(),
		"method":       req.RequestMethod(),
		"client":       req.ClientName(),
		"status_code":  req.ResponseStatusCode(),
		"content_type": req.ResponseContentType(),
		"client_ip":    req.ClientIP(),
		"headers":      headers,
	}
}
