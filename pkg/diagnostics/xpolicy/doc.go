// Package xpolicy 定义请求级诊断的运行时策略（RuntimePolicy）与策略判定。
//
// # 策略
//
// Policy 是有序的累积位标志，数值越大越宽松：
//
//	Off < PersistResults < ModifyResponseHeaders < ModifyResponseBody < DisplayClient(=On)
//
// 一个请求内策略只能收紧不能放宽，这一约束由 xreqctx.RequestContext 执行；
// 本包只负责计算候选策略。
//
// # 判定
//
// Determinator 是 (事件, 当前策略, 请求元数据) → 策略 的纯函数。
// Chain 把多条 Rule 组合为一个 Determinator：对当前事件适用的规则各自给出
// 上限，结果取最小值，且不会超过当前策略。规则失败时 fail closed（Off）。
//
// 内置规则：
//   - StatusCodeRule   响应状态码白名单
//   - ContentTypeRule  响应媒体类型白名单
//   - URIRule          请求 URI 拒绝表达式
//   - AjaxRule         异步请求不注入脚本
//   - ControlCookieRule 控制 cookie 开关
//   - ClientIPRule     客户端地址段白名单（go4.org/netipx）
//   - SamplingRule     一致性采样（xxhash）
//   - RegoRule         OPA Rego 自定义规则
//
// # 用法
//
//	chain, err := xpolicy.NewChain([]xpolicy.Rule{
//	    xpolicy.NewStatusCodeRule(nil, xpolicy.PersistResults),
//	    xpolicy.NewContentTypeRule(nil, xpolicy.PersistResults),
//	    xpolicy.NewAjaxRule(),
//	})
//	p := chain.Determine(xpolicy.EventEndRequest, xpolicy.On, req)
//	if p.Has(xpolicy.DisplayClient) {
//	    // 可以注入诊断脚本
//	}
package xpolicy
