package xid

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// osHostname 测试注入点
var osHostname = os.Hostname

const (
	// EnvMachineID 直接指定机器 ID 的环境变量（0-65535）
	EnvMachineID = "XDIAG_MACHINE_ID"

	// EnvPodName K8s Pod 名称环境变量（通过 Downward API 注入）
	EnvPodName = "POD_NAME"
)

// DefaultMachineID 按以下优先级获取机器 ID：
//
//  1. XDIAG_MACHINE_ID 环境变量
//  2. POD_NAME 环境变量的哈希
//  3. os.Hostname() 的哈希
//
// 哈希方式存在碰撞可能，多实例部署建议显式设置 XDIAG_MACHINE_ID。
func DefaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("xid: invalid %s value %q: %w", EnvMachineID, s, err)
		}
		return uint16(id), nil
	}
	if pod := os.Getenv(EnvPodName); pod != "" {
		return hashToMachineID(pod), nil
	}
	host, err := osHostname()
	if err != nil {
		return 0, fmt.Errorf("xid: hostname: %w", err)
	}
	if host == "" {
		return 0, errors.New("xid: os.Hostname returned empty string")
	}
	return hashToMachineID(host), nil
}

// hashToMachineID 把 64 位哈希按 16 位异或折叠。
func hashToMachineID(s string) uint16 {
	h := xxhash.Sum64String(s)
	return uint16(h) ^ uint16(h>>16) ^ uint16(h>>32) ^ uint16(h>>48)
}
