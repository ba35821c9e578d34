// Package value classifies raw caller data before it reaches a template.
//
// Every datum maps to exactly one Kind. Only KindString values carry escaping
// semantics; containers never escape anything themselves, which keeps escaping
// at the leaves and makes double escaping structurally impossible.
package value

import (
	"reflect"
)

// Kind is the closed set of value variants.
type Kind int

const (
	// KindScalar covers nil, Null, booleans and numbers. Never wrapped.
	KindScalar Kind = iota
	// KindString covers string kinds and byte slices.
	KindString
	// KindSeq covers Map, slices, arrays and Go maps.
	KindSeq
	// KindIter covers iter.Seq / iter.Seq2 shaped functions and channels.
	KindIter
	// KindObject covers everything else.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindString:
		return "string"
	case KindSeq:
		return "seq"
	case KindIter:
		return "iter"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

var bytesType = reflect.TypeOf([]byte(nil))

// Classify returns the Kind of raw. It is pure and total.
func Classify(raw any) Kind {
	switch raw.(type) {
	case nil, Null, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return KindScalar
	case string, []byte:
		return KindString
	case *Map:
		return KindSeq
	}

	rv := reflect.ValueOf(raw)
	rt := rv.Type()
	switch rt.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return KindScalar
	case reflect.String:
		return KindString
	case reflect.Slice:
		if rt.ConvertibleTo(bytesType) && rt.Elem().Kind() == reflect.Uint8 {
			return KindString
		}
		return KindSeq
	case reflect.Array, reflect.Map:
		return KindSeq
	case reflect.Chan:
		if rt.ChanDir()&reflect.RecvDir != 0 {
			return KindIter
		}
	case reflect.Func:
		if rt.CanSeq() || rt.CanSeq2() {
			return KindIter
		}
	}
	return KindObject
}

// IsNil reports whether raw is nil or a typed nil pointer/interface/map/slice.
func IsNil(raw any) bool {
	if raw == nil {
		return true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
