// Package sanitizer cleans untrusted HTML for the clean and strip template
// helpers.
package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer removes unsafe markup from HTML fragments.
type Sanitizer interface {
	Clean(html string) string
}

// Policy adapts a bluemonday policy to Sanitizer.
type Policy struct {
	policy *bluemonday.Policy
}

// New wraps policy. A nil policy falls back to the default one.
func New(policy *bluemonday.Policy) *Policy {
	if policy == nil {
		return Default()
	}
	return &Policy{policy: policy}
}

// Clean sanitizes html, keeping user-generated-content formatting.
func (p *Policy) Clean(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	if p == nil || p.policy == nil {
		return Default().policy.Sanitize(html)
	}
	return p.policy.Sanitize(html)
}

var (
	defaultOnce sync.Once
	defaultSan  *Policy
)

// Default returns the shared sanitizer built on bluemonday's UGC policy.
// Scripts, styles and event handler attributes never survive it.
func Default() *Policy {
	defaultOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowElements("section", "article", "header", "footer", "nav", "figure", "figcaption")
		defaultSan = &Policy{policy: policy}
	})
	return defaultSan
}

// Clean sanitizes html with the default policy.
func Clean(html string) string {
	return Default().Clean(html)
}
