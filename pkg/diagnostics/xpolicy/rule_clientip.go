package xpolicy

import (
	"fmt"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ClientIPRule 客户端地址不在允许的地址段内时关闭诊断。
//
// 常见用法是只对本机或内网请求开放诊断：
//
//	rule, err := xpolicy.NewClientIPRule([]string{"127.0.0.0/8", "::1/128", "10.0.0.0/8"})
type ClientIPRule struct {
	allowed *netipx.IPSet
}

// NewClientIPRule 从 CIDR 或单个地址列表构建规则。
func NewClientIPRule(cidrs []string) (*ClientIPRule, error) {
	var b netipx.IPSetBuilder
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.Contains(c, "/") {
			prefix, err := netip.ParsePrefix(c)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidCIDR, c, err)
			}
			b.AddPrefix(prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(c)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidCIDR, c, err)
		}
		b.Add(addr.Unmap())
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCIDR, err)
	}
	return &ClientIPRule{allowed: set}, nil
}

// Name 实现 Rule。
func (r *ClientIPRule) Name() string { return "client_ip" }

// ExecuteOn 实现 Rule。
func (r *ClientIPRule) ExecuteOn() Event {
	return EventBeginRequest | EventEndRequest | EventExecuteResource
}

// Execute 实现 Rule。无法解析的地址按不允许处理。
func (r *ClientIPRule) Execute(req RequestMetadata) (Policy, error) {
	addr, ok := parseClientAddr(req.ClientIP())
	if !ok || !r.allowed.Contains(addr) {
		return Off, nil
	}
	return On, nil
}

// parseClientAddr 解析客户端地址，兼容 "ip:port" 与 IPv4-mapped IPv6。
func parseClientAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.Unmap(), true
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}
