package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xdiag/pkg/config/xconf"
	"github.com/omeyang/xdiag/pkg/diagnostics/xdiag"
	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
)

func createCommands() []*cli.Command {
	return []*cli.Command{
		createCheckCommand(),
		createEvalCommand(),
		createWatchCommand(),
		createPoliciesCommand(),
	}
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置并打印生效的规则",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return cmdCheck(ctx, stdout(cmd), cmd.String("config"), s)
		},
	}
}

func createEvalCommand() *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "用合成请求评估策略",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uri", Usage: "请求 URI", Required: true},
			&cli.StringFlag{Name: "method", Usage: "请求方法", Value: http.MethodGet},
			&cli.IntFlag{Name: "status", Usage: "响应状态码", Value: http.StatusOK},
			&cli.StringFlag{Name: "content-type", Usage: "响应 Content-Type", Value: "text/html"},
			&cli.StringFlag{Name: "ip", Usage: "客户端地址"},
			&cli.StringFlag{Name: "client", Usage: "客户端名称"},
			&cli.StringSliceFlag{Name: "header", Usage: "请求头，格式 \"Name: value\"，可重复"},
			&cli.StringSliceFlag{Name: "cookie", Usage: "cookie，格式 name=value，可重复"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := buildRequest(cmd)
			if err != nil {
				return err
			}
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()
			return cmdEval(ctx, stdout(cmd), s, logger, req)
		},
	}
}

func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "监视配置文件变更并打印重载结果（Ctrl+C 退出）",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if path == "" {
				return usageErrorf("watch 需要 --config")
			}
			return cmdWatch(ctx, stdout(cmd), path)
		},
	}
}

func createPoliciesCommand() *cli.Command {
	return &cli.Command{
		Name:  "policies",
		Usage: "列出策略名称，从严格到宽松",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cmdPolicies(stdout(cmd))
			return nil
		},
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func loadSettings(cmd *cli.Command) (*xconf.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		return xconf.Default(), nil
	}
	return xconf.Load(path)
}

func buildLogger(cmd *cli.Command) (xlog.Logger, func() error, error) {
	logger, cleanup, err := xlog.New().
		SetOutput(stderr(cmd)).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format")).
		Build()
	if err != nil {
		return nil, nil, usageErrorf("%v", err)
	}
	return logger, cleanup, nil
}

func buildRequest(cmd *cli.Command) (*xpolicy.RequestInfo, error) {
	req := &xpolicy.RequestInfo{
		URI:         cmd.String("uri"),
		Method:      cmd.String("method"),
		Client:      cmd.String("client"),
		StatusCode:  cmd.Int("status"),
		ContentType: cmd.String("content-type"),
		IP:          cmd.String("ip"),
	}
	headers, err := parseHeaders(cmd.StringSlice("header"))
	if err != nil {
		return nil, err
	}
	cookies, err := parseCookies(cmd.StringSlice("cookie"))
	if err != nil {
		return nil, err
	}
	req.Headers = headers
	req.Cookies = cookies
	return req, nil
}

// parseHeaders 解析 "Name: value" 形式的请求头。
func parseHeaders(values []string) (http.Header, error) {
	h := make(http.Header, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usageErrorf("无效的请求头 %q，应为 \"Name: value\"", v)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

// parseCookies 解析 name=value 形式的 cookie。
func parseCookies(values []string) (map[string]string, error) {
	cookies := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usageErrorf("无效的 cookie %q，应为 name=value", v)
		}
		cookies[name] = value
	}
	return cookies, nil
}

func cmdCheck(ctx context.Context, w io.Writer, path string, s *xconf.Settings) error {
	rules, err := xdiag.BuildRules(ctx, s)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, fmt.Sprintf("%s[%s]", r.Name(), r.ExecuteOn()))
	}
	if path == "" {
		path = "(defaults)"
	}
	ruleList := "(none)"
	if len(names) > 0 {
		ruleList = strings.Join(names, ", ")
	}
	breaker := "disabled"
	if b := s.Script.Breaker; b.Enabled {
		breaker = fmt.Sprintf("max_failures=%d open_timeout=%s", b.MaxFailures, b.OpenTimeout)
	}

	fmt.Fprintf(w, "config:         %s\n", path)
	fmt.Fprintf(w, "default policy: %s\n", s.DefaultPolicy)
	fmt.Fprintf(w, "endpoint:       %s/%s (cache %d)\n", strings.TrimRight(s.Endpoint.BaseURI, "/"), s.Endpoint.ResourceName, s.Endpoint.CacheSize)
	fmt.Fprintf(w, "rules:          %s\n", ruleList)
	fmt.Fprintf(w, "script breaker: %s\n", breaker)
	fmt.Fprintf(w, "request ids:    %s\n", s.ID.Generator)
	fmt.Fprintln(w, "OK")
	return nil
}

func cmdEval(ctx context.Context, w io.Writer, s *xconf.Settings, logger xlog.Logger, req *xpolicy.RequestInfo) error {
	rt, err := xdiag.NewFromSettings(s, xdiag.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ctx, rc, err := rt.BeginRequest(ctx, req)
	if err != nil {
		return err
	}
	begin := rc.Policy()

	served, err := rt.ExecuteResource(ctx, rc)
	if err != nil {
		return err
	}
	resource := rc.Policy()

	tags := rc.GetScriptTags()

	end, elapsed, err := rt.EndRequest(ctx, rc)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "request id: %s\n", rc.ID())
	fmt.Fprintf(w, "mode:       %s\n", rc.Mode())
	fmt.Fprintf(w, "begin:      %s\n", begin)
	fmt.Fprintf(w, "resource:   %s (served=%t)\n", resource, served)
	if len(tags) == 0 {
		fmt.Fprintln(w, "scripts:    (none)")
	}
	for _, tag := range tags {
		fmt.Fprintf(w, "scripts:    %s\n", tag)
	}
	fmt.Fprintf(w, "end:        %s\n", end)
	fmt.Fprintf(w, "elapsed:    %s\n", elapsed)
	return nil
}

func cmdWatch(ctx context.Context, w io.Writer, path string) error {
	var mu sync.Mutex
	watcher, err := xconf.Watch(path, func(s *xconf.Settings, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(w, "reload failed: %v\n", err)
			return
		}
		if _, err := xdiag.BuildRules(ctx, s); err != nil {
			fmt.Fprintf(w, "reload failed: %v\n", err)
			return
		}
		fmt.Fprintf(w, "reloaded: default_policy=%s base_uri=%s\n", s.DefaultPolicy, s.Endpoint.BaseURI)
	})
	if err != nil {
		return err
	}

	mu.Lock()
	fmt.Fprintf(w, "watching %s\n", path)
	mu.Unlock()

	watcher.StartAsync()
	<-ctx.Done()
	return watcher.Stop()
}

func cmdPolicies(w io.Writer) {
	for _, p := range xpolicy.Policies() {
		fmt.Fprintf(w, "%-22s %05b\n", p, uint8(p))
	}
}
