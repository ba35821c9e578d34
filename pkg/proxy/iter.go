package proxy

import (
	"iter"
	"reflect"
	"sync"

	"github.com/goliatone/go-boiler/pkg/value"
)

// Iter wraps a single-pass iterator: an iter.Seq or iter.Seq2 shaped
// function or a receive channel. Elements are wrapped as they are produced.
// Once consumed the iterator stays exhausted.
type Iter struct {
	raw  any
	seq  iter.Seq2[any, any]
	next func() (any, any, bool)
	stop func()

	key, cur any
	consumed bool
	opts     Options
}

func newIter(raw any, opts Options) *Iter {
	return &Iter{raw: raw, seq: normalize(raw), opts: opts}
}

// normalize turns any supported iterator into a Seq2. iter.Seq and channels
// are keyed by position.
func normalize(raw any) iter.Seq2[any, any] {
	switch it := raw.(type) {
	case iter.Seq2[any, any]:
		return it
	case iter.Seq[any]:
		return func(yield func(any, any) bool) {
			i := 0
			for v := range it {
				if !yield(i, v) {
					return
				}
				i++
			}
		}
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Func && rv.Type().CanSeq2() {
		return func(yield func(any, any) bool) {
			for k, v := range rv.Seq2() {
				if !yield(k.Interface(), v.Interface()) {
					return
				}
			}
		}
	}
	return func(yield func(any, any) bool) {
		if rv.Kind() == reflect.Chan && rv.IsNil() {
			return
		}
		i := 0
		for v := range rv.Seq() {
			if !yield(i, v.Interface()) {
				return
			}
			i++
		}
	}
}

func (it *Iter) wrap(v any) any { return WrapWith(v, it.opts) }

// Unwrap returns the original iterator.
func (it *Iter) Unwrap() any { return it.raw }

// Autoescape reports whether elements escape when printed.
func (it *Iter) Autoescape() bool { return it.opts.Autoescape }

// String prints nothing. Printing must not consume the iterator.
func (Iter) String() string { return "" }

// Next advances to the next element and reports whether there is one.
func (it *Iter) Next() bool {
	if it.consumed && it.next == nil {
		return false
	}
	if it.next == nil {
		it.next, it.stop = iter.Pull2(it.seq)
		it.consumed = true
		it.opts.Closers.track(it)
	}
	k, v, ok := it.next()
	if !ok {
		it.Close()
		it.key, it.cur = nil, nil
		return false
	}
	it.key, it.cur = k, v
	return true
}

// Current returns the wrapped element at the cursor.
func (it *Iter) Current() any { return it.wrap(it.cur) }

// Key returns the wrapped key at the cursor.
func (it *Iter) Key() any { return it.wrap(it.key) }

// All yields the remaining elements, keys and values wrapped.
func (it *Iter) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		if it.next != nil {
			for it.Next() {
				if !yield(it.Key(), it.Current()) {
					return
				}
			}
			return
		}
		if it.consumed {
			return
		}
		it.consumed = true
		for k, v := range it.seq {
			if !yield(it.wrap(k), it.wrap(v)) {
				return
			}
		}
	}
}

// Values yields the remaining wrapped values.
func (it *Iter) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range it.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// ToSeq drains the remaining elements into a Seq, keeping their keys.
func (it *Iter) ToSeq() *Seq {
	m := value.NewMap()
	for k, v := range it.All() {
		m.Set(Unwrap(k), Unwrap(v))
	}
	return &Seq{origin: m, items: m, opts: it.opts}
}

// Close releases a partially consumed iterator.
func (it *Iter) Close() {
	if it.stop != nil {
		it.stop()
		it.stop = nil
	}
	it.next = nil
}

// Closers releases the iterators a render stepped through with Next. A
// partially consumed iterator holds a suspended goroutine until closed.
type Closers struct {
	mu   sync.Mutex
	open []*Iter
}

func (c *Closers) track(it *Iter) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.open = append(c.open, it)
	c.mu.Unlock()
}

// Len returns the number of tracked iterators.
func (c *Closers) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.open)
}

// Close stops every tracked iterator. It is safe to call more than once.
func (c *Closers) Close() {
	c.mu.Lock()
	open := c.open
	c.open = nil
	c.mu.Unlock()
	for _, it := range open {
		it.Close()
	}
}
