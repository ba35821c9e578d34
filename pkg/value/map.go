package value

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   any
	Value any
}

// Map is an insertion-ordered associative collection whose keys are either
// int or string.
type Map struct {
	keys   []any
	values map[any]any
	next   int
}

// NewMap builds a Map from pairs, in order. Later duplicates overwrite the
// value but keep the original position.
func NewMap(pairs ...Pair) *Map {
	m := &Map{values: make(map[any]any, len(pairs))}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// List builds a Map keyed 0..n-1.
func List(values ...any) *Map {
	m := &Map{values: make(map[any]any, len(values))}
	for _, v := range values {
		m.Push(v)
	}
	return m
}

// MapOf converts slices, arrays and Go maps into a Map. Go maps have no
// insertion order, so their keys are sorted with Compare. A *Map is returned
// as is.
func MapOf(raw any) *Map {
	if m, ok := raw.(*Map); ok {
		return m
	}
	m := &Map{values: map[any]any{}}
	if raw == nil {
		return m
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			m.Push(rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortStableFunc(keys, func(a, b reflect.Value) int {
			return Compare(NormalizeKey(a.Interface()), NormalizeKey(b.Interface()))
		})
		for _, k := range keys {
			m.Set(k.Interface(), rv.MapIndex(k).Interface())
		}
	}
	return m
}

// NormalizeKey maps integer kinds to int and anything that is not a string to
// its fmt representation.
func NormalizeKey(key any) any {
	switch k := key.(type) {
	case int:
		return k
	case string:
		return k
	}
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint())
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(key)
}

func (m *Map) init() {
	if m.values == nil {
		m.values = map[any]any{}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Has reports whether key is present, even when its value is nil.
func (m *Map) Has(key any) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[NormalizeKey(key)]
	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[NormalizeKey(key)]
	return v, ok
}

// Set stores value under key, appending the key when it is new.
func (m *Map) Set(key, value any) {
	m.init()
	k := NormalizeKey(key)
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
		if i, isInt := k.(int); isInt && i >= m.next {
			m.next = i + 1
		}
	}
	m.values[k] = value
}

// Push appends value under the next free integer key and returns that key.
func (m *Map) Push(value any) int {
	m.init()
	k := m.next
	m.Set(k, value)
	return k
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key any) bool {
	if m == nil {
		return false
	}
	k := NormalizeKey(key)
	if _, ok := m.values[k]; !ok {
		return false
	}
	delete(m.values, k)
	m.keys = slices.DeleteFunc(m.keys, func(e any) bool { return e == k })
	return true
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []any {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Pairs returns a copy of the entries in insertion order.
func (m *Map) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.keys))
	for i, k := range m.keys {
		out[i] = Pair{Key: k, Value: m.values[k]}
	}
	return out
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *Map) Clone() *Map {
	out := &Map{values: make(map[any]any, m.Len())}
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out
}
