package proxy

import (
	"fmt"

	"github.com/goliatone/go-boiler/pkg/value"
)

// Object wraps any other value. Member access is forwarded through
// value.Object; results are wrapped, and a member the value does not have
// is an invalid-argument error naming it.
type Object struct {
	raw  any
	obj  value.Object
	opts Options
}

func newObject(raw any, opts Options) *Object {
	return &Object{raw: raw, obj: value.Adapt(raw), opts: opts}
}

func (o *Object) wrap(v any) any { return WrapWith(v, o.opts) }

// Unwrap returns the original value.
func (o *Object) Unwrap() any { return o.raw }

// Autoescape reports whether results escape when printed.
func (o *Object) Autoescape() bool { return o.opts.Autoescape }

// String prints the value's own text representation through a String leaf.
// Values that are neither fmt.Stringer nor error print nothing.
func (o *Object) String() string {
	switch o.raw.(type) {
	case fmt.Stringer, error:
	default:
		return ""
	}
	if value.IsNil(o.raw) {
		return ""
	}
	return newString(value.Stringify(o.raw), o.opts).String()
}

// Get reads a property.
func (o *Object) Get(name string) (any, error) {
	v, err := o.obj.Get(name)
	if err != nil {
		return nil, err
	}
	return o.wrap(v), nil
}

// Set writes a property. The first result prints as nothing so the call can
// be used inline.
func (o *Object) Set(name string, v any) (any, error) {
	if err := o.obj.Set(name, Unwrap(v)); err != nil {
		return nil, err
	}
	return value.Null(""), nil
}

// Call invokes a method with unwrapped arguments.
func (o *Object) Call(name string, args ...any) (any, error) {
	v, err := o.obj.Call(name, unwrapAll(args)...)
	if err != nil {
		return nil, err
	}
	return o.wrap(v), nil
}

// Invoke calls the value itself with unwrapped arguments.
func (o *Object) Invoke(args ...any) (any, error) {
	v, err := o.obj.Invoke(unwrapAll(args)...)
	if err != nil {
		return nil, err
	}
	return o.wrap(v), nil
}
