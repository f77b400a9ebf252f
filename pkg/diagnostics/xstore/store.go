// Package xstore 提供请求级键值存储，供同一请求内的插桩组件共享数据。
//
// Store 不做内部同步：一个 Store 只属于一个请求，调用方负责在
// 同一请求的多个 goroutine 之间加锁。
package xstore

import (
	"maps"
	"reflect"
	"slices"
)

// Store 字符串键到任意值的映射。零值不可用，使用 New 创建。
type Store struct {
	m map[string]any
}

// New 创建空 Store。
func New() *Store {
	return &Store{m: make(map[string]any)}
}

// Get 返回 key 对应的值。
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Set 设置 key 的值，已存在时覆盖。
func (s *Store) Set(key string, value any) {
	s.m[key] = value
}

// Delete 删除 key，返回 key 是否存在。
func (s *Store) Delete(key string) bool {
	_, ok := s.m[key]
	delete(s.m, key)
	return ok
}

// Contains 报告 key 是否存在（值可以是 nil）。
func (s *Store) Contains(key string) bool {
	_, ok := s.m[key]
	return ok
}

// Len 返回条目数。
func (s *Store) Len() int { return len(s.m) }

// Keys 返回排序后的全部 key。
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.m))
}

// Clear 清空全部条目。
func (s *Store) Clear() {
	clear(s.m)
}

// GetAs 返回 key 对应的 T 类型值。key 不存在或类型不符时返回零值和 false。
// 值为 nil 时，T 为接口类型则视为存在的零值。
func GetAs[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.m[key]
	if !ok {
		return zero, false
	}
	if v == nil {
		return zero, reflect.TypeFor[T]().Kind() == reflect.Interface
	}
	t, ok := v.(T)
	return t, ok
}

// GetOrSet 返回 key 已有的 T 类型值；不存在时调用 create 生成并保存。
// 已存在但类型不符时用新值覆盖，nil 值按 GetAs 的规则判断。
func GetOrSet[T any](s *Store, key string, create func() T) T {
	if v, ok := GetAs[T](s, key); ok {
		return v
	}
	v := create()
	s.m[key] = v
	return v
}
