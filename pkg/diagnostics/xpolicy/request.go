package xpolicy

import "net/http"

// RequestMetadata 由宿主 HTTP 适配器实现的只读请求/响应元数据。
//
// 在构造请求上下文时和脚本注入判定时被查询。ResponseStatusCode 和
// ResponseContentType 通常在请求结束时才有意义。
type RequestMetadata interface {
	// RequestURI 请求 URI（路径，可带查询串）。
	RequestURI() string
	// RequestMethod HTTP 方法。
	RequestMethod() string
	// ClientName 客户端标识名（用于区分多个诊断客户端）。
	ClientName() string
	// ResponseStatusCode 响应状态码。
	ResponseStatusCode() int
	// ResponseContentType 响应 Content-Type。
	ResponseContentType() string
	// ClientIP 客户端地址，不带端口。
	ClientIP() string
	// Header 返回请求头的值，不存在时返回空字符串。
	Header(name string) string
	// Cookie 返回 cookie 的值，不存在时返回空字符串。
	Cookie(name string) string
}

// RequestInfo 是 RequestMetadata 的值类型实现。
//
// 适用于测试、命令行试算，以及适配器在请求结束时生成的快照。
type RequestInfo struct {
	URI         string
	Method      string
	Client      string
	StatusCode  int
	ContentType string
	IP          string
	Headers     http.Header
	Cookies     map[string]string
}

var _ RequestMetadata = (*RequestInfo)(nil)

// RequestURI 实现 RequestMetadata。
func (r *RequestInfo) RequestURI() string { return r.URI }

// RequestMethod 实现 RequestMetadata。
func (r *RequestInfo) RequestMethod() string { return r.Method }

// ClientName 实现 RequestMetadata。
func (r *RequestInfo) ClientName() string { return r.Client }

// ResponseStatusCode 实现 RequestMetadata。
func (r *RequestInfo) ResponseStatusCode() int { return r.StatusCode }

// ResponseContentType 实现 RequestMetadata。
func (r *RequestInfo) ResponseContentType() string { return r.ContentType }

// ClientIP 实现 RequestMetadata。
func (r *RequestInfo) ClientIP() string { return r.IP }

// Header 实现 RequestMetadata，名称按 HTTP 规范大小写不敏感。
func (r *RequestInfo) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// Cookie 实现 RequestMetadata。
func (r *RequestInfo) Cookie(name string) string {
	if r.Cookies == nil {
		return ""
	}
	return r.Cookies[name]
}
