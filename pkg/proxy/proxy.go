// Package proxy wraps caller data so that every string reaching template
// output is HTML-escaped exactly once.
//
// Wrap picks the proxy by value.Classify: strings become *String, collections
// *Seq, iterators *Iter and everything else *Object. Scalars pass through.
// Containers never escape; they hand out wrapped elements and the *String
// leaf escapes when it is printed.
//
//	p := proxy.Wrap("<b>hi</b>", true)
//	fmt.Print(p)                       // &lt;b&gt;hi&lt;/b&gt;
//	fmt.Print(p.(*proxy.String).Raw()) // <b>hi</b>
package proxy

import (
	"github.com/goliatone/go-boiler/pkg/sanitizer"
	"github.com/goliatone/go-boiler/pkg/value"
)

// Proxy is implemented by every wrapper in this package.
type Proxy interface {
	value.Unwrapper
	// Autoescape reports whether the proxy escapes when printed.
	Autoescape() bool
}

// Options carries the settings a proxy hands down to the values it wraps.
type Options struct {
	Autoescape bool
	// Sanitizer backs String.Clean. Nil means sanitizer.Default().
	Sanitizer sanitizer.Sanitizer
	// Closers, when set, collects iterators stepped with Next so the owner
	// can release them. Without it the caller must Close such iterators.
	Closers *Closers
}

func (o Options) sanitizer() sanitizer.Sanitizer {
	if o.Sanitizer == nil {
		return sanitizer.Default()
	}
	return o.Sanitizer
}

// Wrap wraps raw according to its kind. It is idempotent: a Proxy is
// returned unchanged. nil becomes value.Null so templates print nothing.
func Wrap(raw any, autoescape bool) any {
	return WrapWith(raw, Options{Autoescape: autoescape})
}

// WrapWith is Wrap with explicit options.
func WrapWith(raw any, opts Options) any {
	if p, ok := raw.(Proxy); ok {
		return p
	}
	switch value.Classify(raw) {
	case value.KindScalar:
		if raw == nil {
			return value.Null("")
		}
		return raw
	case value.KindString:
		return newString(raw, opts)
	case value.KindSeq:
		return newSeq(raw, opts)
	case value.KindIter:
		return newIter(raw, opts)
	default:
		return newObject(raw, opts)
	}
}

// Unwrap returns the value behind v when v is a proxy, nil for value.Null
// and v itself otherwise.
func Unwrap(v any) any {
	switch t := v.(type) {
	case value.Unwrapper:
		return t.Unwrap()
	case value.Null:
		return nil
	}
	return v
}

func unwrapAll(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = Unwrap(a)
	}
	return out
}
