// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xid: 请求 ID 生成，UUID v4 与 Sonyflake 两种实现
package util
