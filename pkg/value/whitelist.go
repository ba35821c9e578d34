package value

import "reflect"

// Whitelist is the set of concrete types trusted to present themselves
// verbatim. Values of these types are bound without a proxy and never escaped.
type Whitelist struct {
	types map[reflect.Type]struct{}
}

// NewWhitelist builds a whitelist from sample values or reflect.Type entries.
//
//	value.NewWhitelist(template.HTML(""), (*Widget)(nil))
func NewWhitelist(samples ...any) Whitelist {
	w := Whitelist{types: make(map[reflect.Type]struct{}, len(samples))}
	w.add(samples...)
	return w
}

// With returns a new whitelist containing w's types plus samples.
func (w Whitelist) With(samples ...any) Whitelist {
	out := Whitelist{types: make(map[reflect.Type]struct{}, len(w.types)+len(samples))}
	for t := range w.types {
		out.types[t] = struct{}{}
	}
	out.add(samples...)
	return out
}

func (w *Whitelist) add(samples ...any) {
	for _, s := range samples {
		switch t := s.(type) {
		case nil:
			continue
		case reflect.Type:
			w.types[t] = struct{}{}
		default:
			w.types[reflect.TypeOf(s)] = struct{}{}
		}
	}
}

// Contains reports whether raw's concrete type is trusted.
func (w Whitelist) Contains(raw any) bool {
	if raw == nil || len(w.types) == 0 {
		return false
	}
	_, ok := w.types[reflect.TypeOf(raw)]
	return ok
}

// Len returns the number of trusted types.
func (w Whitelist) Len() int {
	return len(w.types)
}
