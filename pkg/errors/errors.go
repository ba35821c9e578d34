// Package errors defines the error taxonomy shared by every boiler package.
//
// Each failure carries a Kind so callers can branch with errors.Is against the
// exported sentinels, no matter how many layers of wrapping (text/template
// execution errors, render errors) sit on top of it:
//
//	if errors.Is(err, berrors.ErrLookup) {
//	    // template missing, namespace unknown or path outside the roots
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	// KindLookup covers invalid template paths, unknown namespaces, missing
	// files and files resolving outside the configured roots.
	KindLookup Kind = "lookup"
	// KindRender wraps any failure raised while a template body executes.
	KindRender Kind = "render"
	// KindConfiguration is fatal and never retried: a layout declared twice or
	// a section started while another one is open.
	KindConfiguration Kind = "configuration"
	// KindInvalidArgument reports malformed sort modes, unknown members on
	// forwarded objects and bad helper arguments.
	KindInvalidArgument Kind = "invalid_argument"
	// KindOutOfBounds reports a missing key on a sequence proxy.
	KindOutOfBounds Kind = "out_of_bounds"
	// KindDepthExceeded reports a layout chain or insert nesting deeper than
	// the configured maximum.
	KindDepthExceeded Kind = "depth_exceeded"
)

// Sentinels for errors.Is. They only carry a Kind.
var (
	ErrLookup          = &Error{Kind: KindLookup}
	ErrRender          = &Error{Kind: KindRender}
	ErrConfiguration   = &Error{Kind: KindConfiguration}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrOutOfBounds     = &Error{Kind: KindOutOfBounds}
	ErrDepthExceeded   = &Error{Kind: KindDepthExceeded}
)

// Error is the structured error returned by boiler packages.
type Error struct {
	Kind Kind
	// Path is the template path involved, when known.
	Path string
	// Name is the offending name: a missing key, member, section or mode.
	Name    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("boiler: ")
	b.WriteString(string(e.Kind))
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same Kind, which makes the sentinels work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// WithPath returns a copy of e carrying path.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// Lookupf builds a KindLookup error for path.
func Lookupf(path, format string, args ...any) *Error {
	return &Error{Kind: KindLookup, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Render wraps cause as a KindRender error for path.
func Render(path string, cause error) *Error {
	return &Error{Kind: KindRender, Path: path, Message: "template rendering error", Cause: cause}
}

// Renderf builds a KindRender error without a cause.
func Renderf(name, format string, args ...any) *Error {
	return &Error{Kind: KindRender, Name: name, Message: fmt.Sprintf(format, args...)}
}

// Configurationf builds a KindConfiguration error.
func Configurationf(name, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Name: name, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf builds a KindInvalidArgument error naming the offender.
func InvalidArgumentf(name, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Name: name, Message: fmt.Sprintf(format, args...)}
}

// OutOfBounds reports a missing sequence key. String keys are quoted, numeric
// keys are not.
func OutOfBounds(key any) *Error {
	var name string
	switch k := key.(type) {
	case string:
		name = "'" + k + "'"
	default:
		name = fmt.Sprint(k)
	}
	return &Error{Kind: KindOutOfBounds, Name: name, Message: "undefined key " + name}
}

// DepthExceeded reports a chain longer than limit.
func DepthExceeded(path, what string, limit int) *Error {
	return &Error{
		Kind:    KindDepthExceeded,
		Path:    path,
		Message: fmt.Sprintf("%s exceeds the maximum depth of %d", what, limit),
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// As is errors.As, re-exported so callers importing this package under its
// own name do not need a second import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is, re-exported for the same reason as As.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
