// Package config 提供配置相关的子包。
//
// 子包列表：
//   - xconf: 诊断运行时配置加载、校验与热重载，基于 koanf
package config
