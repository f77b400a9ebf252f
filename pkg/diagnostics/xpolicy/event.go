package xpolicy

import "strings"

// Event 请求生命周期事件，按位组合，用于声明规则在哪些事件上执行。
type Event uint8

const (
	// EventBeginRequest 请求开始。
	EventBeginRequest Event = 1 << iota
	// EventEndRequest 请求结束（响应状态码和内容类型已知）。
	EventEndRequest
	// EventExecuteResource 诊断资源端点被访问。
	EventExecuteResource
	// EventBeginSessionAccess 开始访问会话状态。
	EventBeginSessionAccess
	// EventEndSessionAccess 结束访问会话状态。
	EventEndSessionAccess
)

// AllEvents 全部生命周期事件。
const AllEvents = EventBeginRequest | EventEndRequest | EventExecuteResource |
	EventBeginSessionAccess | EventEndSessionAccess

// Has 判断事件集合是否包含 e 中的任意事件。
func (ev Event) Has(e Event) bool {
	return ev&e != 0
}

var eventNames = [...]struct {
	e    Event
	name string
}{
	{EventBeginRequest, "BeginRequest"},
	{EventEndRequest, "EndRequest"},
	{EventExecuteResource, "ExecuteResource"},
	{EventBeginSessionAccess, "BeginSessionAccess"},
	{EventEndSessionAccess, "EndSessionAccess"},
}

// String 返回事件名，多个事件以 "|" 连接。
func (ev Event) String() string {
	if ev == 0 {
		return "None"
	}
	var parts []string
	for _, n := range eventNames {
		if ev.Has(n.e) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "|")
}

// ParseEvent 解析单个事件名，大小写不敏感。
func ParseEvent(s string) (Event, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, n := range eventNames {
		if strings.ToLower(n.name) == normalized {
			return n.e, true
		}
	}
	return 0, false
}
