// Package xdiag 把策略决定、资源端点分类、脚本标签生成和计时组装为
// 诊断运行时，驱动单个请求的生命周期：
//
//	rt, err := xdiag.NewFromSettings(settings)
//	ctx, rc, err := rt.BeginRequest(ctx, req)
//	if ok, _ := rt.ExecuteResource(ctx, rc); ok {
//	    // 输出诊断资源
//	}
//	policy, elapsed, err := rt.EndRequest(ctx, rc)
//
// Runtime 构造后不可变，可在多个请求间并发使用；单个 RequestContext
// 不是并发安全的，由调用方串行访问。
package xdiag
