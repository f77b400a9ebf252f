package xresource

import (
	"net/url"
	"strings"
)

// DefaultResourceName 默认资源端点名称。
const DefaultResourceName = "resource.axd"

// EndpointConfig 资源端点分类器，实现必须是纯函数。
type EndpointConfig interface {
	IsResourceRequest(uri, baseURI string) bool
}

// EndpointFunc 函数适配为 EndpointConfig。
type EndpointFunc func(uri, baseURI string) bool

// IsResourceRequest 实现 EndpointConfig。
func (f EndpointFunc) IsResourceRequest(uri, baseURI string) bool { return f(uri, baseURI) }

// PathEndpoint 按路径匹配资源端点。
//
// 请求路径（去掉查询串和片段，大小写不敏感）等于 baseURI + "/" + Name
// 或位于其下时视为资源请求。Name 为空时使用 DefaultResourceName。
type PathEndpoint struct {
	Name string
}

// IsResourceRequest 实现 EndpointConfig。
func (e PathEndpoint) IsResourceRequest(uri, baseURI string) bool {
	name := strings.Trim(e.Name, "/")
	if name == "" {
		name = DefaultResourceName
	}
	target := normalizeBase(baseURI) + "/" + strings.ToLower(name)
	path := requestPath(uri)
	return path == target || strings.HasPrefix(path, target+"/")
}

// normalizeBase 去掉 "~" 前缀和末尾斜杠，保证以 "/" 开头。
func normalizeBase(base string) string {
	base = strings.TrimPrefix(strings.TrimSpace(base), "~")
	base = strings.TrimRight(strings.ToLower(base), "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}

// requestPath 提取小写路径。绝对 URL 取其 Path 部分。
func requestPath(uri string) string {
	uri = strings.TrimSpace(uri)
	if strings.Contains(uri, "://") {
		if u, err := url.Parse(uri); err == nil {
			uri = u.Path
		}
	}
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	return strings.ToLower(uri)
}
