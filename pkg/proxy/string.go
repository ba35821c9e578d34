package proxy

import (
	"unicode/utf8"

	"github.com/goliatone/go-boiler/pkg/sanitizer"
	"github.com/goliatone/go-boiler/pkg/value"
)

// String wraps a textual value. Printing it yields escaped text when
// autoescaping is on.
type String struct {
	raw  any
	text string
	opts Options
}

func newString(raw any, opts Options) *String {
	return &String{raw: raw, text: value.Stringify(raw), opts: opts}
}

// String implements fmt.Stringer, which is what templates print.
func (s *String) String() string {
	if s.opts.Autoescape {
		return value.Escape(s.text)
	}
	return s.text
}

// Raw returns the unescaped text.
func (s *String) Raw() string { return s.text }

// Unwrap returns the original value.
func (s *String) Unwrap() any { return s.raw }

// Autoescape reports whether printing escapes.
func (s *String) Autoescape() bool { return s.opts.Autoescape }

// Escape returns the escaped text regardless of the autoescape setting.
func (s *String) Escape() string { return value.Escape(s.text) }

// Clean returns the text run through the HTML sanitizer. The result is
// trusted markup and is not escaped again.
func (s *String) Clean() string { return s.opts.sanitizer().Clean(s.text) }

// Strip removes all tags except the allowed ones. The result prints
// unescaped and keeps the attributes of allowed tags; it is not sanitized.
func (s *String) Strip(allowed ...string) string {
	return sanitizer.Strip(s.text, allowed...)
}

// Empty reports whether the text is empty.
func (s *String) Empty() bool { return s.text == "" }

// Len returns the number of characters.
func (s *String) Len() int { return utf8.RuneCountInString(s.text) }
