// Package xtimer 提供请求级诊断计时。
//
// Stopwatch 是一个只能停止一次的单调计时器；ExecutionTimer 绑定到一个已启动的
// Stopwatch，为插桩代码提供共享零点的耗时读数和不可变的 Result 记录。
//
// 典型用法：
//
//	sw := xtimer.StartNew(nil)
//	timer, _ := xtimer.NewExecutionTimer(sw)
//
//	offset := timer.Start()
//	doWork()
//	r := timer.Stop(offset)
//
//	xtimer.Export(ctx, tracer, "db.query", r)
//
// Export 把 Result 以显式起止时间导出为 OpenTelemetry span。
//
// Stopwatch 和 ExecutionTimer 的读操作是并发安全的；Stop 只应由请求的所有者调用一次。
package xtimer
