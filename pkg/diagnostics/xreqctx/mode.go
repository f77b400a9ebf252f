package xreqctx

import "fmt"

// Mode 请求处理模式，构造时确定，之后不变。
type Mode uint8

const (
	// RegularRequest 常规请求，参与插桩。
	RegularRequest Mode = iota
	// ResourceRequest 诊断资源端点请求。
	ResourceRequest
)

func (m Mode) String() string {
	switch m {
	case RegularRequest:
		return "Regular"
	case ResourceRequest:
		return "Resource"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// TimingState 计时子状态。
type TimingState uint8

const (
	TimingNotStarted TimingState = iota
	TimingRunning
	TimingStopped
)

func (s TimingState) String() string {
	switch s {
	case TimingNotStarted:
		return "NotStarted"
	case TimingRunning:
		return "Running"
	case TimingStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("TimingState(%d)", uint8(s))
	}
}
