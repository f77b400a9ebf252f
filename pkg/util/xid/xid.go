package xid

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sony/sonyflake/v2"
)

var (
	// ErrInvalidConfig 配置参数无效。sonyflake.New 失败时也包裹为此错误。
	ErrInvalidConfig = errors.New("xid: invalid config")

	// ErrOverTimeLimit 时间分量溢出，生成器无法继续生成 ID。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrNilGenerator 生成器为 nil 或未通过 NewGenerator 创建。
	ErrNilGenerator = errors.New("xid: nil generator (use NewGenerator to create)")
)

// Func 生成字符串 ID 的函数。
type Func func() (string, error)

// UUID 生成随机 UUID v4 字符串。
func UUID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Generator 基于 Sonyflake 的时间有序 ID 生成器，并发安全。
type Generator struct {
	sf *sonyflake.Sonyflake
}

// NewGenerator 创建生成器。未指定 WithMachineID 时使用 DefaultMachineID。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	machineIDFn := cfg.machineID
	if machineIDFn == nil {
		machineIDFn = DefaultMachineID
	}
	settings := sonyflake.Settings{
		MachineID: func() (int, error) {
			id, err := machineIDFn()
			return int(id), err
		},
	}
	if cfg.checkMachineID != nil {
		settings.CheckMachineID = func(id int) bool {
			return cfg.checkMachineID(uint16(id))
		}
	}

	sf, err := sonyflake.New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Generator{sf: sf}, nil
}

// New 生成 int64 ID。
func (g *Generator) New() (int64, error) {
	if g == nil || g.sf == nil {
		return 0, ErrNilGenerator
	}
	id, err := g.sf.NextID()
	if err != nil {
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
		return 0, err
	}
	return id, nil
}

// NewString 生成 36 进制字符串 ID。
func (g *Generator) NewString() (string, error) {
	id, err := g.New()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}
