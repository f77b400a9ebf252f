// xdiagctl 是诊断运行时的命令行工具，用于校验配置和离线评估策略。
//
// 用法:
//
//	xdiagctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件路径（YAML/JSON），为空时使用默认配置
//	    --log-level   日志级别 (debug/info/warn/error，默认: warn)
//	    --log-format  日志格式 (text/json，默认: text)
//
// 命令:
//
//	check      校验配置并打印生效的规则
//	eval       用合成请求走一遍请求生命周期，打印各事件后的策略
//	watch      监视配置文件变更并打印重载结果
//	policies   列出策略名称及其标志位
//
// 退出码:
//
//	0: 成功
//	1: 执行失败（配置无效、规则构建失败等）
//	2: 参数错误
//
// 示例:
//
//	xdiagctl -c xdiag.yaml check
//	xdiagctl -c xdiag.yaml eval --uri /orders --status 500 --content-type text/html
//	xdiagctl eval --uri /glimpse/resource.axd --ip 10.0.0.8
//	xdiagctl -c xdiag.yaml watch
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xdiagctl",
		Usage:   "诊断运行时配置校验与策略评估工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（YAML/JSON）",
				Sources: cli.EnvVars("XDIAG_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
		},
		Commands: createCommands(),
		// 由 run() 统一映射退出码，不让 urfave/cli 直接 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return exitCode(createApp().Run(ctx, os.Args))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// isCLIUsageError 识别 urfave/cli 产生的参数错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"Required flag",
		"Required flags",
		"No help topic for",
		"invalid value",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}
