package xlog

import (
	"context"
	"log/slog"
)

type discard struct{}

// Discard 返回丢弃全部输出的 Logger，库代码在调用方未注入 Logger 时使用。
func Discard() Logger { return discard{} }

func (discard) Debug(context.Context, string, ...slog.Attr) {}
func (discard) Info(context.Context, string, ...slog.Attr)  {}
func (discard) Warn(context.Context, string, ...slog.Attr)  {}
func (discard) Error(context.Context, string, ...slog.Attr) {}
func (d discard) With(...slog.Attr) Logger                  { return d }
