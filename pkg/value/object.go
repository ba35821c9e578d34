package value

import (
	"fmt"
	"reflect"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
)

// Object is the capability surface of dynamic values. Types implement it to
// control what templates may read, write and call; everything else goes
// through the reflection adapter returned by Adapt.
type Object interface {
	Get(name string) (any, error)
	Set(name string, value any) error
	Call(name string, args ...any) (any, error)
	Invoke(args ...any) (any, error)
}

// Unwrapper is implemented by values that stand in for another value, such as
// proxies. Arguments are unwrapped before being handed to Go functions that do
// not accept the wrapper itself.
type Unwrapper interface {
	Unwrap() any
}

// Adapt returns raw as an Object, using reflection when raw does not
// implement Object itself.
func Adapt(raw any) Object {
	if o, ok := raw.(Object); ok {
		return o
	}
	return reflectObject{raw: raw}
}

type reflectObject struct {
	raw any
}

func (o reflectObject) target() reflect.Value {
	rv := reflect.ValueOf(o.raw)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func (o reflectObject) Get(name string) (any, error) {
	rv := o.target()
	if rv.Kind() == reflect.Struct {
		if f, ok := rv.Type().FieldByName(name); ok && f.IsExported() {
			return rv.FieldByIndex(f.Index).Interface(), nil
		}
	}
	return nil, berrors.InvalidArgumentf(name, "no such property %q on %T", name, o.raw)
}

func (o reflectObject) Set(name string, value any) error {
	rv := o.target()
	if rv.Kind() != reflect.Struct {
		return berrors.InvalidArgumentf(name, "no such property %q on %T", name, o.raw)
	}
	f, ok := rv.Type().FieldByName(name)
	if !ok || !f.IsExported() {
		return berrors.InvalidArgumentf(name, "no such property %q on %T", name, o.raw)
	}
	field := rv.FieldByIndex(f.Index)
	if !field.CanSet() {
		return berrors.InvalidArgumentf(name, "property %q on %T is not settable", name, o.raw)
	}
	arg, err := convertArg(value, field.Type())
	if err != nil {
		return berrors.InvalidArgumentf(name, "property %q: %v", name, err)
	}
	field.Set(arg)
	return nil
}

func (o reflectObject) Call(name string, args ...any) (any, error) {
	if o.raw == nil {
		return nil, berrors.InvalidArgumentf(name, "no such method %q on nil", name)
	}
	m := reflect.ValueOf(o.raw).MethodByName(name)
	if !m.IsValid() {
		return nil, berrors.InvalidArgumentf(name, "no such method %q on %T", name, o.raw)
	}
	return callValue(name, m, args)
}

func (o reflectObject) Invoke(args ...any) (any, error) {
	fn := reflect.ValueOf(o.raw)
	if o.raw == nil || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, berrors.InvalidArgumentf("invoke", "no such method: %T is not invokable", o.raw)
	}
	return callValue("invoke", fn, args)
}

// Call invokes the Go function fn with args, unwrapping proxies where the
// parameter type does not accept them. A trailing error result is returned
// as the error.
func Call(name string, fn any, args ...any) (any, error) {
	rv := reflect.ValueOf(fn)
	if fn == nil || rv.Kind() != reflect.Func {
		return nil, berrors.InvalidArgumentf(name, "%q is not a function", name)
	}
	return callValue(name, rv, args)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func callValue(name string, fn reflect.Value, args []any) (any, error) {
	ft := fn.Type()
	in, err := convertArgs(ft, args)
	if err != nil {
		return nil, berrors.InvalidArgumentf(name, "calling %s: %v", name, err)
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if ft.Out(0) == errorType {
			if e, _ := out[0].Interface().(error); e != nil {
				return nil, e
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	case 2:
		if ft.Out(1) != errorType {
			return nil, berrors.InvalidArgumentf(name, "%s: second result must be an error", name)
		}
		if e, _ := out[1].Interface().(error); e != nil {
			return nil, e
		}
		return out[0].Interface(), nil
	default:
		return nil, berrors.InvalidArgumentf(name, "%s returns %d values", name, len(out))
	}
}

func convertArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("want at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		v, err := convertArg(a, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in[i] = v
	}
	return in, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if u, ok := arg.(Unwrapper); ok {
		return convertArg(u.Unwrap(), pt)
	}
	if pt.Kind() == reflect.String {
		// int to string conversion would yield a rune, not digits.
		if av.Kind() == reflect.String {
			return av.Convert(pt), nil
		}
		return reflect.ValueOf(Stringify(arg)).Convert(pt), nil
	}
	if av.Type().ConvertibleTo(pt) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, pt)
}
