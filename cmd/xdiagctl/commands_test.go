package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer 供 watch 回调与测试并发读写。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runApp(ctx context.Context, out *syncBuffer, args ...string) error {
	app := createApp()
	app.Writer = out
	app.ErrWriter = &syncBuffer{}
	return app.Run(ctx, append([]string{"xdiagctl"}, args...))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestPoliciesCommand(t *testing.T) {
	var out syncBuffer
	if err := runApp(context.Background(), &out, "policies"); err != nil {
		t.Fatalf("policies: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "Off") || !strings.HasPrefix(lines[4], "On") {
		t.Errorf("unexpected order:\n%s", out.String())
	}
	if !strings.HasSuffix(lines[4], "11110") {
		t.Errorf("On bits = %q, want 11110", lines[4])
	}
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "regular",
			args: []string{"eval", "--uri", "/orders"},
			want: []string{"mode:       Regular", "begin:      On", "served=false", "scripts:    <script", "end:        On"},
		},
		{
			name: "resource",
			args: []string{"eval", "--uri", "/glimpse/resource.axd"},
			want: []string{"mode:       Resource", "served=true"},
		},
		{
			name: "server error",
			args: []string{"eval", "--uri", "/orders", "--status", "500"},
			want: []string{"scripts:    (none)", "end:        PersistResults"},
		},
		{
			name: "ajax",
			args: []string{"eval", "--uri", "/orders", "--header", "X-Requested-With: XMLHttpRequest"},
			want: []string{"end:        ModifyResponseHeaders"},
		},
		{
			name: "denied uri",
			args: []string{"eval", "--uri", "/__browserLink/requestData"},
			want: []string{"begin:      Off", "elapsed:    0s"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			if err := runApp(context.Background(), &out, tt.args...); err != nil {
				t.Fatalf("eval: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestEvalCommand_WithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xdiag.yaml")
	writeFile(t, path, "rules:\n  control_cookie: diag\n")

	var out syncBuffer
	if err := runApp(context.Background(), &out, "-c", path, "eval", "--uri", "/", "--cookie", "diag=On"); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.Contains(out.String(), "end:        On") {
		t.Errorf("cookie On should keep policy On:\n%s", out.String())
	}

	var capped syncBuffer
	if err := runApp(context.Background(), &capped, "-c", path, "eval", "--uri", "/"); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.Contains(capped.String(), "end:        ModifyResponseHeaders") {
		t.Errorf("missing cookie should cap policy:\n%s", capped.String())
	}
}

func TestEvalCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing uri", []string{"eval"}},
		{"bad header", []string{"eval", "--uri", "/", "--header", "no-colon"}},
		{"bad cookie", []string{"eval", "--uri", "/", "--cookie", "=x"}},
		{"bad log level", []string{"--log-level", "loud", "eval", "--uri", "/"}},
		{"watch without config", []string{"watch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runApp(context.Background(), &syncBuffer{}, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := exitCode(err); got != 2 {
				t.Errorf("exitCode(%v) = %d, want 2", err, got)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	var out syncBuffer
	if err := runApp(context.Background(), &out, "check"); err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"config:         (defaults)", "default policy: On", "/glimpse/resource.axd (cache 256)", "uri[", "ajax[EndRequest]", "request ids:    uuid", "OK"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "rules:\n  client_cidrs: [\"nope\"]\n")
	err := runApp(context.Background(), &syncBuffer{}, "-c", path, "check")
	if err == nil {
		t.Fatal("expected invalid cidr error")
	}
	if got := exitCode(err); got != 1 {
		t.Errorf("exitCode = %d, want 1", got)
	}
}

func TestWatchCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xdiag.yaml")
	writeFile(t, path, "default_policy: On\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- runApp(ctx, &out, "-c", path, "watch") }()

	waitFor(t, &out, "watching "+path)
	writeFile(t, path, "default_policy: PersistResults\n")
	waitFor(t, &out, "reloaded: default_policy=PersistResults")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not exit after cancel")
	}
}

func waitFor(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q:\n%s", want, out.String())
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"X-Requested-With: XMLHttpRequest", "accept:text/html"})
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Get("x-requested-with"); got != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", got)
	}
	if got := h.Get("Accept"); got != "text/html" {
		t.Errorf("Accept = %q", got)
	}

	_, err = parseHeaders([]string{": empty"})
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Errorf("expected *usageError, got %T: %v", err, err)
	}
}

func TestParseCookies(t *testing.T) {
	c, err := parseCookies([]string{"a=1", "b=x=y", "empty="})
	if err != nil {
		t.Fatal(err)
	}
	if c["a"] != "1" || c["b"] != "x=y" || c["empty"] != "" {
		t.Errorf("cookies = %v", c)
	}
	if _, err := parseCookies([]string{"novalue"}); err == nil {
		t.Error("expected error for cookie without '='")
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil); got != 0 {
		t.Errorf("exitCode(nil) = %d", got)
	}
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Errorf("exitCode(boom) = %d", got)
	}
	if got := exitCode(usageErrorf("bad")); got != 2 {
		t.Errorf("exitCode(usage) = %d", got)
	}
	if got := exitCode(errors.New(`Required flag "uri" not set`)); got != 2 {
		t.Errorf("exitCode(required) = %d", got)
	}
}
