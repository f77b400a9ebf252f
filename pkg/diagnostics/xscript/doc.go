// Package xscript 决定是否向响应注入诊断客户端脚本标签。
//
// Provider 在每次 GetScriptTags 时重新求值门控谓词：谓词为 false 时不调用生成器；
// 为 true 时以请求 ID 调用生成器。生成失败（包括 panic）通过错误回调上报并被吞掉，
// 诊断组件自身的错误不会影响宿主响应。
//
// 多个请求共享的生成器可以用 NewBreakerGenerator 包装熔断器，
// 连续失败后快速返回 ErrCircuitOpen。
package xscript
