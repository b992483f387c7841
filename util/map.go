package util

import (
	"sort"
)

func MapKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func SortedStringKeys[V any](m map[string]V) []string {
	keys := MapKeys(m)
	sort.Strings(keys)
	return keys
}

func SortedIntKeys[V any](m map[int]V) []int {
	keys := MapKeys(m)
	sort.Ints(keys)
	return keys
}

type DefaultMap[K comparable, V any] struct {
	content     map[K]V
	defaultFunc func(K) V
}

func NewDefaultMap[K comparable, V any](defaultFunc func(K) V) *DefaultMap[K, V] {
	return &DefaultMap[K, V]{make(map[K]V), defaultFunc}
}

func (m *DefaultMap[K, V]) Get(key K) V {
	var val V
	var ok bool
	if val, ok = m.content[key]; !ok {
		val = m.defaultFunc(key)
		m.content[key] = val
	}
	return val
}

// Lookup does not create a default value for missing keys.
func (m *DefaultMap[K, V]) Lookup(key K) (V, bool) {
	val, ok := m.content[key]
	return val, ok
}

func (m *DefaultMap[K, V]) ForEach(fn func(K, V) bool) {
	for k, v := range m.content {
		if !fn(k, v) {
			break
		}
	}
}
