// Package helpers provides an optional set of template methods: markdown
// rendering and a few text utilities.
//
//	eng, err := engine.New(append(helpers.Options(), engine.WithDir("views"))...)
//
// Templates then call {{markdown .body}}, {{truncate .title 40}} and so on.
package helpers

import (
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-boiler/pkg/engine"
	"github.com/goliatone/go-boiler/pkg/value"
)

// HTML is markup the helpers produced and sanitized. It is whitelisted by
// Options so templates print it verbatim.
type HTML string

// Methods returns the helper functions keyed by template name.
func Methods() map[string]any {
	return map[string]any{
		"markdown": Markdown,
		"truncate": Truncate,
		"join":     Join,
		"fallback": Fallback,
	}
}

// Options registers Methods and whitelists HTML.
func Options() []engine.Option {
	return []engine.Option{
		engine.WithMethods(Methods()),
		engine.WithWhitelist(HTML("")),
	}
}

// Truncate shortens s to at most n runes, ending with an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return strings.TrimRightFunc(string(runes[:n-1]), isSpace) + "…"
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }

// Join concatenates the elements of a slice, map or *value.Map with sep.
// Anything else is stringified as a single element.
func Join(items any, sep string) string {
	if u, ok := items.(value.Unwrapper); ok {
		items = u.Unwrap()
	}
	if value.Classify(items) != value.KindSeq {
		return value.Stringify(items)
	}
	m := value.MapOf(items)
	parts := make([]string, 0, m.Len())
	for _, item := range m.All() {
		parts = append(parts, value.Stringify(item))
	}
	return strings.Join(parts, sep)
}

// Fallback returns v unless it stringifies to blank text, then def.
func Fallback(def, v any) any {
	if strings.TrimSpace(value.Stringify(v)) == "" {
		return def
	}
	return v
}
