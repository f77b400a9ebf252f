package xpolicy

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy 表示单个请求允许执行的诊断工作量。
//
// 取值为累积位标志：每个更宽松的级别都包含所有更严格级别的位（Off 除外），
// 因此数值大小与宽松程度一致，可以直接用 < / > 比较。
//
//	Off                   = 1
//	PersistResults        = 2
//	ModifyResponseHeaders = 6  (PersistResults | 4)
//	ModifyResponseBody    = 14 (ModifyResponseHeaders | 8)
//	DisplayClient         = 30 (ModifyResponseBody | 16)
//	On                    = DisplayClient
type Policy uint8

const (
	// Off 不做任何诊断工作。
	Off Policy = 1

	// PersistResults 仅收集并保存诊断结果，不触碰响应。
	PersistResults Policy = 1 << 1

	// ModifyResponseHeaders 允许写入诊断响应头。
	ModifyResponseHeaders = 1<<2 | PersistResults

	// ModifyResponseBody 允许改写响应体。
	ModifyResponseBody = 1<<3 | ModifyResponseHeaders

	// DisplayClient 允许向页面注入诊断客户端脚本。
	DisplayClient = 1<<4 | ModifyResponseBody

	// On 最宽松的策略，等同于 DisplayClient。
	On = DisplayClient
)

// IsValid 判断是否为已知的策略取值。
func (p Policy) IsValid() bool {
	switch p {
	case Off, PersistResults, ModifyResponseHeaders, ModifyResponseBody, DisplayClient:
		return true
	default:
		return false
	}
}

// Has 判断 p 是否包含 flag 的全部位。
func (p Policy) Has(flag Policy) bool {
	return p&flag == flag
}

// String 返回策略名称。On 与 DisplayClient 数值相同，统一输出 "On"。
func (p Policy) String() string {
	switch p {
	case Off:
		return "Off"
	case PersistResults:
		return "PersistResults"
	case ModifyResponseHeaders:
		return "ModifyResponseHeaders"
	case ModifyResponseBody:
		return "ModifyResponseBody"
	case On:
		return "On"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// MarshalText 实现 encoding.TextMarshaler，便于写入 YAML/JSON 配置。
func (p Policy) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (p *Policy) UnmarshalText(data []byte) error {
	parsed, err := ParsePolicy(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePolicy 解析策略名称，大小写不敏感，忽略首尾空白。
//
// 支持 off / persistresults / modifyresponseheaders / modifyresponsebody /
// displayclient / on，也接受带下划线或连字符的写法（如 persist_results）。
func ParsePolicy(s string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "", "-", "").Replace(normalized)
	switch normalized {
	case "off":
		return Off, nil
	case "persistresults":
		return PersistResults, nil
	case "modifyresponseheaders":
		return ModifyResponseHeaders, nil
	case "modifyresponsebody":
		return ModifyResponseBody, nil
	case "displayclient", "on":
		return On, nil
	case "":
		return 0, ErrEmptyPolicy
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Min 返回两者中更严格的策略。
func Min(a, b Policy) Policy {
	if a < b {
		return a
	}
	return b
}

// Policies 返回全部合法取值，按宽松程度升序排列。
func Policies() []Policy {
	return []Policy{Off, PersistResults, ModifyResponseHeaders, ModifyResponseBody, On}
}
