// Package xmetrics 记录诊断上下文的运行指标。
//
// Recorder 是与实现无关的记录接口，库代码默认使用 NoopRecorder。
// NewOTelRecorder 基于 OpenTelemetry metric API：
//
//	xdiag.policy.changes     counter   策略收窄次数（from, to）
//	xdiag.policy.violations  counter   试图放宽策略的次数（current, requested）
//	xdiag.script.tags        counter   脚本标签门控结果（outcome）
//	xdiag.request.duration   histogram 请求耗时，单位秒（mode, policy）
package xmetrics
