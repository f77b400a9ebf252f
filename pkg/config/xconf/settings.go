package xconf

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
	"github.com/omeyang/xdiag/pkg/diagnostics/xresource"
	"github.com/omeyang/xdiag/pkg/observability/xlog"
)

// 默认值
const (
	DefaultBaseURI            = "/glimpse"
	DefaultCacheSize          = 256
	DefaultBreakerMaxFailures = 5
	DefaultBreakerOpenTimeout = 30 * time.Second
)

// 请求 ID 生成器名称。
const (
	IDGeneratorUUID      = "uuid"
	IDGeneratorSonyflake = "sonyflake"
)

// Settings 诊断运行时配置。
type Settings struct {
	DefaultPolicy xpolicy.Policy   `koanf:"default_policy"`
	Endpoint      EndpointSettings `koanf:"endpoint"`
	Rules         RuleSettings     `koanf:"rules"`
	Script        ScriptSettings   `koanf:"script"`
	Log           LogSettings      `koanf:"log"`
	ID            IDSettings       `koanf:"id"`

	// BaseDir 配置文件所在目录，用于解析相对路径。从字节解析时为空。
	BaseDir string `koanf:"-"`
}

// EndpointSettings 资源端点配置。
type EndpointSettings struct {
	BaseURI      string `koanf:"base_uri"`
	ResourceName string `koanf:"resource_name"`
	// CacheSize 分类结果缓存容量，0 表示不缓存。
	CacheSize int `koanf:"cache_size"`
}

// RuleSettings 策略规则配置。空值关闭对应规则。
type RuleSettings struct {
	StatusCodes   []int        `koanf:"status_codes"`
	ContentTypes  []string     `koanf:"content_types"`
	URIDeny       []string     `koanf:"uri_deny"`
	Ajax          bool         `koanf:"ajax"`
	ControlCookie string       `koanf:"control_cookie"`
	ClientCIDRs   []string     `koanf:"client_cidrs"`
	SamplingRate  float64      `koanf:"sampling_rate"`
	Rego          RegoSettings `koanf:"rego"`
}

// RegoSettings Rego 规则配置。
type RegoSettings struct {
	ModuleFile string `koanf:"module_file"`
	Query      string `koanf:"query"`
}

// ScriptSettings 脚本标签生成配置。
type ScriptSettings struct {
	Breaker BreakerSettings `koanf:"breaker"`
}

// BreakerSettings 脚本生成器熔断配置。
type BreakerSettings struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// LogSettings 日志配置。File 为空时输出到 stderr。
type LogSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// IDSettings 请求 ID 配置。Generator 取 uuid 或 sonyflake。
type IDSettings struct {
	Generator string `koanf:"generator"`
}

// Default 返回默认配置。
func Default() *Settings {
	return &Settings{
		DefaultPolicy: xpolicy.On,
		Endpoint: EndpointSettings{
			BaseURI:      DefaultBaseURI,
			ResourceName: xresource.DefaultResourceName,
			CacheSize:    DefaultCacheSize,
		},
		Rules: RuleSettings{
			StatusCodes:  []int{200, 301, 302},
			ContentTypes: []string{"text/html", "application/xhtml+xml"},
			URIDeny:      []string{"__browserLink"},
			Ajax:         true,
			SamplingRate: 1,
			Rego:         RegoSettings{Query: xpolicy.DefaultRegoQuery},
		},
		Script: ScriptSettings{
			Breaker: BreakerSettings{
				MaxFailures: DefaultBreakerMaxFailures,
				OpenTimeout: DefaultBreakerOpenTimeout,
			},
		},
		Log: LogSettings{Level: "info", Format: "text"},
		ID:  IDSettings{Generator: IDGeneratorUUID},
	}
}

// Clone 返回深拷贝。
func (s *Settings) Clone() *Settings {
	c := *s
	c.Rules.StatusCodes = slices.Clone(s.Rules.StatusCodes)
	c.Rules.ContentTypes = slices.Clone(s.Rules.ContentTypes)
	c.Rules.URIDeny = slices.Clone(s.Rules.URIDeny)
	c.Rules.ClientCIDRs = slices.Clone(s.Rules.ClientCIDRs)
	return &c
}

// Validate 校验配置，所有问题合并为一个错误返回，每项都包装 ErrInvalidSettings。
//
// 正则、CIDR 和 Rego 模块的语法在构建规则时检查。
func (s *Settings) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidSettings, field, fmt.Sprintf(format, args...)))
	}

	if !s.DefaultPolicy.IsValid() {
		add("default_policy", "%s is not a valid policy", s.DefaultPolicy)
	}
	if strings.TrimSpace(s.Endpoint.BaseURI) == "" {
		add("endpoint.base_uri", "must not be empty")
	}
	if s.Endpoint.CacheSize < 0 {
		add("endpoint.cache_size", "must not be negative, got %d", s.Endpoint.CacheSize)
	}
	for _, code := range s.Rules.StatusCodes {
		if code < 100 || code > 599 {
			add("rules.status_codes", "%d is not an http status code", code)
		}
	}
	if math.IsNaN(s.Rules.SamplingRate) || s.Rules.SamplingRate < 0 || s.Rules.SamplingRate > 1 {
		add("rules.sampling_rate", "must be in [0, 1], got %v", s.Rules.SamplingRate)
	}
	if s.Rules.Rego.ModuleFile != "" && strings.TrimSpace(s.Rules.Rego.Query) == "" {
		add("rules.rego.query", "must not be empty when module_file is set")
	}
	if b := s.Script.Breaker; b.Enabled {
		if b.MaxFailures == 0 {
			add("script.breaker.max_failures", "must be positive")
		}
		if b.OpenTimeout <= 0 {
			add("script.breaker.open_timeout", "must be positive, got %s", b.OpenTimeout)
		}
	}
	if _, err := xlog.ParseLevel(s.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "must be text or json, got %q", s.Log.Format)
	}
	switch strings.ToLower(s.ID.Generator) {
	case IDGeneratorUUID, IDGeneratorSonyflake:
	default:
		add("id.generator", "must be uuid or sonyflake, got %q", s.ID.Generator)
	}

	return errors.Join(errs...)
}

// ResolvePath 把相对路径解析为相对 BaseDir 的路径。
func (s *Settings) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || s.BaseDir == "" {
		return p
	}
	return filepath.Join(s.BaseDir, p)
}
