package xconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	delim = "."
	tag   = "koanf"
)

// Source 一份已加载的配置：底层 koanf 实例及其解码结果。
type Source struct {
	path    string
	format  Format
	isBytes bool

	mu       sync.RWMutex
	k        *koanf.Koanf
	settings *Settings
}

// Open 从文件加载并校验配置。根据扩展名检测格式（.yaml/.yml 或 .json）。
func Open(path string) (*Source, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	src := &Source{path: path, format: format}
	if err := src.Reload(); err != nil {
		return nil, err
	}
	return src, nil
}

// FromBytes 从字节数据加载并校验配置，空数据得到 Default()。
func FromBytes(data []byte, format Format) (*Source, error) {
	if format != FormatYAML && format != FormatJSON {
		return nil, ErrUnsupportedFormat
	}
	k, s, err := decode(data, format, "")
	if err != nil {
		return nil, err
	}
	return &Source{format: format, isBytes: true, k: k, settings: s}, nil
}

// Load 等价于 Open(path) 后取 Settings()。
func Load(path string) (*Settings, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return src.Settings(), nil
}

// Parse 等价于 FromBytes(data, format) 后取 Settings()。
func Parse(data []byte, format Format) (*Settings, error) {
	src, err := FromBytes(data, format)
	if err != nil {
		return nil, err
	}
	return src.Settings(), nil
}

// Settings 返回当前配置的副本。
func (s *Source) Settings() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Client 返回底层的 koanf 实例。Reload 后旧实例仍可读，但数据已过期。
func (s *Source) Client() *koanf.Koanf {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k
}

// Path 返回配置文件路径，从字节数据创建时为空。
func (s *Source) Path() string { return s.path }

// Format 返回配置格式。
func (s *Source) Format() Format { return s.format }

// Reload 重新读取配置文件。失败时保留原配置。
func (s *Source) Reload() error {
	if s.isBytes {
		return errors.New("xconf: cannot reload config created from bytes")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	k, settings, err := decode(data, s.format, filepath.Dir(s.path))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.k = k
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// decode 解析数据、叠加默认值并校验。
func decode(data []byte, format Format, baseDir string) (*koanf.Koanf, *Settings, error) {
	k := koanf.New(delim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, nil, err
		}
	}

	s := Default()
	s.BaseDir = baseDir
	// 切片整体覆盖默认值，mapstructure 会逐元素合并，先清空
	for key, reset := range map[string]func(){
		"rules.status_codes":  func() { s.Rules.StatusCodes = nil },
		"rules.content_types": func() { s.Rules.ContentTypes = nil },
		"rules.uri_deny":      func() { s.Rules.URIDeny = nil },
		"rules.client_cidrs":  func() { s.Rules.ClientCIDRs = nil },
	} {
		if k.Exists(key) {
			reset()
		}
	}

	if err := k.UnmarshalWithConf("", s, koanf.UnmarshalConf{Tag: tag}); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	return k, s, nil
}

// loadData 加载数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
