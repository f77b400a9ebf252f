package xpolicy

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

// 内置规则的默认取值。
var (
	// DefaultStatusCodes 允许完整诊断的响应状态码。
	DefaultStatusCodes = []int{200, 301, 302}

	// DefaultContentTypes 允许完整诊断的响应媒体类型。
	DefaultContentTypes = []string{"text/html", "application/xhtml+xml"}
)

const (
	// DefaultControlCookie 控制 cookie 名称。
	DefaultControlCookie = "xdiagPolicy"

	headerRequestedWith = "X-Requested-With"
	ajaxRequestedWith   = "XMLHttpRequest"
)

// =============================================================================
// StatusCodeRule
// =============================================================================

// StatusCodeRule 响应状态码不在允许列表时把策略限制到 ceiling。
type StatusCodeRule struct {
	allowed map[int]struct{}
	ceiling Policy
}

// NewStatusCodeRule 创建状态码规则。codes 为空时使用 DefaultStatusCodes，
// ceiling 非法时使用 PersistResults。
func NewStatusCodeRule(codes []int, ceiling Policy) *StatusCodeRule {
	if len(codes) == 0 {
		codes = DefaultStatusCodes
	}
	if !ceiling.IsValid() {
		ceiling = PersistResults
	}
	allowed := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		allowed[c] = struct{}{}
	}
	return &StatusCodeRule{allowed: allowed, ceiling: ceiling}
}

// Name 实现 Rule。
func (r *StatusCodeRule) Name() string { return "status_code" }

// ExecuteOn 实现 Rule。状态码仅在请求结束时可知。
func (r *StatusCodeRule) ExecuteOn() Event { return EventEndRequest }

// Execute 实现 Rule。
func (r *StatusCodeRule) Execute(req RequestMetadata) (Policy, error) {
	if _, ok := r.allowed[req.ResponseStatusCode()]; ok {
		return On, nil
	}
	return r.ceiling, nil
}

// =============================================================================
// ContentTypeRule
// =============================================================================

// ContentTypeRule 响应媒体类型不在允许列表时把策略限制到 ceiling。
// 比较时忽略参数（如 charset）与大小写。
type ContentTypeRule struct {
	allowed map[string]struct{}
	ceiling Policy
}

// NewContentTypeRule 创建内容类型规则。types 为空时使用 DefaultContentTypes，
// ceiling 非法时使用 PersistResults。
func NewContentTypeRule(types []string, ceiling Policy) *ContentTypeRule {
	if len(types) == 0 {
		types = DefaultContentTypes
	}
	if !ceiling.IsValid() {
		ceiling = PersistResults
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[mediaType(t)] = struct{}{}
	}
	return &ContentTypeRule{allowed: allowed, ceiling: ceiling}
}

// Name 实现 Rule。
func (r *ContentTypeRule) Name() string { return "content_type" }

// ExecuteOn 实现 Rule。
func (r *ContentTypeRule) ExecuteOn() Event { return EventEndRequest }

// Execute 实现 Rule。
func (r *ContentTypeRule) Execute(req RequestMetadata) (Policy, error) {
	if _, ok := r.allowed[mediaType(req.ResponseContentType())]; ok {
		return On, nil
	}
	return r.ceiling, nil
}

// mediaType 取出 Content-Type 的媒体类型部分并转为小写。
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// =============================================================================
// URIRule
// =============================================================================

// URIRule 请求 URI 命中任一拒绝表达式时关闭诊断。
type URIRule struct {
	deny []*regexp.Regexp
}

// NewURIRule 编译拒绝表达式。
func NewURIRule(patterns []string) (*URIRule, error) {
	deny := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p, err)
		}
		deny = append(deny, re)
	}
	return &URIRule{deny: deny}, nil
}

// Name 实现 Rule。
func (r *URIRule) Name() string { return "uri" }

// ExecuteOn 实现 Rule。
func (r *URIRule) ExecuteOn() Event { return EventBeginRequest | EventEndRequest }

// Execute 实现 Rule。
func (r *URIRule) Execute(req RequestMetadata) (Policy, error) {
	uri := req.RequestURI()
	for _, re := range r.deny {
		if re.MatchString(uri) {
			return Off, nil
		}
	}
	return On, nil
}

// =============================================================================
// AjaxRule
// =============================================================================

// AjaxRule 异步请求不能注入页面脚本，最多允许写响应头。
type AjaxRule struct{}

// NewAjaxRule 创建 Ajax 规则。
func NewAjaxRule() *AjaxRule { return &AjaxRule{} }

// Name 实现 Rule。
func (r *AjaxRule) Name() string { return "ajax" }

// ExecuteOn 实现 Rule。
func (r *AjaxRule) ExecuteOn() Event { return EventEndRequest }

// Execute 实现 Rule。
func (r *AjaxRule) Execute(req RequestMetadata) (Policy, error) {
	if strings.EqualFold(req.Header(headerRequestedWith), ajaxRequestedWith) {
		return ModifyResponseHeaders, nil
	}
	return On, nil
}

// =============================================================================
// ControlCookieRule
// =============================================================================

// ControlCookieRule 仅当控制 cookie 的值为 "On" 时允许完整诊断，
// 否则限制到 ModifyResponseHeaders（仍可通过响应头通知客户端）。
type ControlCookieRule struct {
	cookie string
}

// NewControlCookieRule 创建控制 cookie 规则。name 为空时使用 DefaultControlCookie。
func NewControlCookieRule(name string) *ControlCookieRule {
	if strings.TrimSpace(name) == "" {
		name = DefaultControlCookie
	}
	return &ControlCookieRule{cookie: name}
}

// Name 实现 Rule。
func (r *ControlCookieRule) Name() string { return "control_cookie" }

// ExecuteOn 实现 Rule。
func (r *ControlCookieRule) ExecuteOn() Event { return EventBeginRequest | EventEndRequest }

// Execute 实现 Rule。
func (r *ControlCookieRule) Execute(req RequestMetadata) (Policy, error) {
	if strings.EqualFold(strings.TrimSpace(req.Cookie(r.cookie)), "on") {
		return On, nil
	}
	return ModifyResponseHeaders, nil
}
