package proxy

import (
	"fmt"
	"iter"
	"reflect"
	"strings"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/value"
)

// Seq wraps a keyed collection. Elements handed out are wrapped with the
// same options; the collection itself never escapes anything.
//
// Slices, arrays and Go maps are copied into a *value.Map on construction.
// Unwrap returns the original collection until the proxy is mutated, after
// which it returns the mutated *value.Map. A *value.Map is used in place.
type Seq struct {
	origin any
	items  *value.Map
	owned  bool
	dirty  bool
	opts   Options
}

func newSeq(raw any, opts Options) *Seq {
	if m, ok := raw.(*value.Map); ok {
		if m == nil {
			m = value.NewMap()
			raw = m
		}
		return &Seq{origin: raw, items: m, opts: opts}
	}
	return &Seq{origin: raw, items: value.MapOf(raw), owned: true, opts: opts}
}

func (s *Seq) derive(m *value.Map) *Seq {
	return &Seq{origin: m, items: m, opts: s.opts}
}

func (s *Seq) wrap(v any) any { return WrapWith(v, s.opts) }

func (s *Seq) touch() {
	if s.owned {
		s.dirty = true
	}
}

// Unwrap returns the underlying collection.
func (s *Seq) Unwrap() any {
	if s.owned && s.dirty {
		return s.items
	}
	return s.origin
}

// Autoescape reports whether elements escape when printed.
func (s *Seq) Autoescape() bool { return s.opts.Autoescape }

// Items returns the collection as a *value.Map without copying.
func (s *Seq) Items() *value.Map { return s.items }

// String prints the elements space separated in brackets. Each element
// prints the way its own proxy does, so only String leaves escape.
func (s Seq) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, v := range s.items.All() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		if value.Classify(v) == value.KindScalar {
			b.WriteString(value.Stringify(v))
			continue
		}
		b.WriteString(fmt.Sprint(s.wrap(v)))
	}
	b.WriteByte(']')
	return b.String()
}

// Len returns the number of elements.
func (s *Seq) Len() int { return s.items.Len() }

// Count is Len.
func (s *Seq) Count() int { return s.items.Len() }

// Empty reports whether there are no elements.
func (s *Seq) Empty() bool { return s.items.Len() == 0 }

// Has reports whether key is present, even when it holds nil.
func (s *Seq) Has(key any) bool { return s.items.Has(Unwrap(key)) }

// Exists is Has.
func (s *Seq) Exists(key any) bool { return s.Has(key) }

// Get returns the wrapped element stored under key. A missing key is an
// out-of-bounds error naming it.
func (s *Seq) Get(key any) (any, error) {
	k := Unwrap(key)
	v, ok := s.items.Get(k)
	if !ok {
		return nil, berrors.OutOfBounds(value.NormalizeKey(k))
	}
	return s.wrap(v), nil
}

// Set stores v under key and returns the proxy.
func (s *Seq) Set(key, v any) *Seq {
	s.items.Set(Unwrap(key), Unwrap(v))
	s.touch()
	return s
}

// Push appends v under the next integer key and returns the proxy.
func (s *Seq) Push(v any) *Seq {
	s.items.Push(Unwrap(v))
	s.touch()
	return s
}

// Delete removes key and returns the proxy.
func (s *Seq) Delete(key any) *Seq {
	if s.items.Delete(Unwrap(key)) {
		s.touch()
	}
	return s
}

// All iterates in insertion order. Keys and values are both wrapped, so a
// string key prints escaped too.
func (s *Seq) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for k, v := range s.items.All() {
			if !yield(s.wrap(k), s.wrap(v)) {
				return
			}
		}
	}
}

// Values iterates over the wrapped values.
func (s *Seq) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range s.items.All() {
			if !yield(s.wrap(v)) {
				return
			}
		}
	}
}

// Keys iterates over the wrapped keys.
func (s *Seq) Keys() iter.Seq[any] {
	return func(yield func(any) bool) {
		for k := range s.items.All() {
			if !yield(s.wrap(k)) {
				return
			}
		}
	}
}

// Merge returns s combined with other. String keys from other overwrite,
// integer keys are appended and renumbered.
func (s *Seq) Merge(other any) (*Seq, error) {
	om, err := seqItems(other)
	if err != nil {
		return nil, err
	}
	out := value.NewMap()
	for _, m := range []*value.Map{s.items, om} {
		for k, v := range m.All() {
			if _, isInt := k.(int); isInt {
				out.Push(v)
				continue
			}
			out.Set(k, v)
		}
	}
	return s.derive(out), nil
}

func seqItems(other any) (*value.Map, error) {
	if o, ok := other.(*Seq); ok {
		return o.items, nil
	}
	raw := Unwrap(other)
	if raw == nil {
		return value.NewMap(), nil
	}
	if value.Classify(raw) != value.KindSeq {
		return nil, berrors.InvalidArgumentf("merge", "cannot merge %T into a sequence", raw)
	}
	return value.MapOf(raw), nil
}

// Map applies fn to every wrapped element, keeping keys.
func (s *Seq) Map(fn any) (*Seq, error) {
	call, err := callback("map", fn)
	if err != nil {
		return nil, err
	}
	out := value.NewMap()
	for k, v := range s.items.All() {
		res, err := call(s.wrap(v))
		if err != nil {
			return nil, err
		}
		out.Set(k, Unwrap(res))
	}
	return s.derive(out), nil
}

// Filter keeps the elements for which fn returns a truthy value. Keys are
// preserved.
func (s *Seq) Filter(fn any) (*Seq, error) {
	call, err := callback("filter", fn)
	if err != nil {
		return nil, err
	}
	out := value.NewMap()
	for k, v := range s.items.All() {
		res, err := call(s.wrap(v))
		if err != nil {
			return nil, err
		}
		if truthy(res) {
			out.Set(k, v)
		}
	}
	return s.derive(out), nil
}

// Reduce folds the elements with fn(carry, element), starting from initial
// (nil when omitted). The result is wrapped.
func (s *Seq) Reduce(fn any, initial ...any) (any, error) {
	call, err := callback("reduce", fn)
	if err != nil {
		return nil, err
	}
	var carry any
	if len(initial) > 0 {
		carry = Unwrap(initial[0])
	}
	for _, v := range s.items.All() {
		res, err := call(carry, s.wrap(v))
		if err != nil {
			return nil, err
		}
		carry = Unwrap(res)
	}
	return s.wrap(carry), nil
}

func callback(name string, fn any) (func(args ...any) (any, error), error) {
	switch f := fn.(type) {
	case nil:
		return nil, berrors.InvalidArgumentf(name, "%s: no callable provided", name)
	case func(any) any:
		return func(args ...any) (any, error) { return f(args[0]), nil }, nil
	case func(any) bool:
		return func(args ...any) (any, error) { return f(args[0]), nil }, nil
	case func(any, any) any:
		return func(args ...any) (any, error) { return f(args[0], args[1]), nil }, nil
	}
	fn = Unwrap(fn)
	if reflect.ValueOf(fn).Kind() != reflect.Func {
		return nil, berrors.InvalidArgumentf(name, "%s: %T is not callable", name, fn)
	}
	return func(args ...any) (any, error) { return value.Call(name, fn, args...) }, nil
}

func truthy(v any) bool {
	v = Unwrap(v)
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return !reflect.ValueOf(v).IsZero()
}
