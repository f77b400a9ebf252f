package xpolicy

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// SamplingKeyFunc 从请求元数据提取采样 key。
// 相同 key 在相同比率下总是得到相同的采样决策。
type SamplingKeyFunc func(req RequestMetadata) string

// DefaultSamplingKey 以客户端地址作为采样 key，同一客户端的请求采样结果一致。
func DefaultSamplingKey(req RequestMetadata) string {
	return req.ClientIP()
}

// SamplingRule 按比率对请求做一致性采样，未命中的请求关闭诊断。
type SamplingRule struct {
	rate    float64
	keyFunc SamplingKeyFunc
}

// NewSamplingRule 创建采样规则。rate 取值 [0.0, 1.0]，NaN 或越界返回 ErrInvalidRate。
// keyFunc 为 nil 时使用 DefaultSamplingKey。
func NewSamplingRule(rate float64, keyFunc SamplingKeyFunc) (*SamplingRule, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return nil, ErrInvalidRate
	}
	if keyFunc == nil {
		keyFunc = DefaultSamplingKey
	}
	return &SamplingRule{rate: rate, keyFunc: keyFunc}, nil
}

// Rate 返回采样比率。
func (r *SamplingRule) Rate() float64 { return r.rate }

// Name 实现 Rule。
func (r *SamplingRule) Name() string { return "sampling" }

// ExecuteOn 实现 Rule。采样只在请求开始时决定一次。
func (r *SamplingRule) ExecuteOn() Event { return EventBeginRequest }

// Execute 实现 Rule。
func (r *SamplingRule) Execute(req RequestMetadata) (Policy, error) {
	if r.sampled(r.keyFunc(req)) {
		return On, nil
	}
	return Off, nil
}

func (r *SamplingRule) sampled(key string) bool {
	if r.rate >= 1 {
		return true
	}
	if r.rate <= 0 {
		return false
	}
	// xxhash 是确定性的，同一 key 在所有进程中得到相同的采样结果。
	// 空 key 也参与哈希，保证判定可重复。
	return unitFraction(xxhash.Sum64String(key)) < r.rate
}

// unitFraction 把 64 位哈希映射到 [0, 1)：取高 53 位，float64 可精确表示。
func unitFraction(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}
