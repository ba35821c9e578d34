package helpers

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-boiler/pkg/sanitizer"
)

var (
	markdownOnce sync.Once
	markdownConv goldmark.Markdown
)

func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownConv = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return markdownConv
}

// Markdown renders GitHub-flavoured markdown to HTML and runs the result
// through the default sanitizer.
func Markdown(src string) (HTML, error) {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("helpers: markdown: %w", err)
	}
	return HTML(sanitizer.Clean(buf.String())), nil
}
