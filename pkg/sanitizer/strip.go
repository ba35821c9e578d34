package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

// Strip removes every HTML tag from s except the allowed ones. Allowed tags
// may be given as "br" or "<br>". Text is kept verbatim, entities included.
// Comments and doctypes are dropped.
//
// Allowed tags are written out as found, attributes included, so
// Strip(`<a href="javascript:x()">`, "a") keeps the script URL. The result
// is not safe markup; use Clean for untrusted input that must stay HTML.
func Strip(s string, allowed ...string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	keep := allowedTags(allowed)

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if _, ok := keep[string(name)]; ok {
				b.Write(z.Raw())
			}
		}
	}
}

func allowedTags(allowed []string) map[string]struct{} {
	if len(allowed) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(allowed))
	for _, entry := range allowed {
		// "<a><br>" lists two tags.
		for _, tag := range strings.FieldsFunc(entry, func(r rune) bool {
			return r == '<' || r == '>' || r == '/' || r == ',' || r == ' '
		}) {
			out[strings.ToLower(tag)] = struct{}{}
		}
	}
	return out
}
