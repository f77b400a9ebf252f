// Package xid 生成诊断请求标识。
//
// 默认生成器 UUID 产生随机 UUID v4 字符串，无需任何配置。
// 需要按时间排序的短 ID 时使用 Sonyflake 生成器：
//
//	gen, err := xid.NewGenerator(xid.WithMachineID(func() (uint16, error) { return 7, nil }))
//	if err != nil { ... }
//	id, err := gen.NewString() // 36 进制，如 "3bv9k1n8xa2f"
//
// 两者都满足 Func 签名，可直接作为 xreqctx.WithIDFunc 的参数。
package xid
