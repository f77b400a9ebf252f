// Package xresource 判断请求是否指向诊断资源端点。
//
// 资源请求（客户端脚本、数据查询等）由诊断组件自身处理，不参与常规插桩。
// PathEndpoint 按路径前缀匹配：
//
//	ep := xresource.PathEndpoint{Name: "resource.axd"}
//	ep.IsResourceRequest("/glimpse/resource.axd?n=client", "/glimpse") // true
//	ep.IsResourceRequest("/shop/cart", "/glimpse")                      // false
//
// 分类结果是输入的纯函数，高流量场景可用 NewCachedEndpoint 加一层 LRU 缓存。
package xresource
