// Package xlog 在 log/slog 之上提供 context 优先的结构化日志。
//
//   - 所有方法都需要 context.Context，EnrichHandler 从中提取诊断请求和追踪字段
//   - 方法签名只接受 slog.Attr，避免隐式 key-value 转换
//   - Builder 构建 Logger，Build() 返回 cleanup 函数用于关闭轮转文件
//   - 库代码默认使用 Discard()，由调用方注入真实 Logger
package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带额外属性的派生 Logger，派生 logger 共享父级的级别。
	With(attrs ...slog.Attr) Logger
}

// Leveler 级别控制接口
type Leveler interface {
	SetLevel(level Level)
	GetLevel() Level
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel 组合接口：Logger + Leveler，Build() 返回此接口。
type LoggerWithLevel interface {
	Logger
	Leveler
}
