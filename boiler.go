// Package boiler renders text/template files with automatic escaping, layout
// inheritance, named sections and template inserts.
//
// Most programs only need New:
//
//	eng, err := boiler.New("./templates")
//	html, err := eng.Render("pages/home", map[string]any{"title": "Hello"})
//
// The engine, option and config types live in pkg/engine and are re-exported
// here for convenience.
package boiler

import "github.com/goliatone/go-boiler/pkg/engine"

type (
	Engine    = engine.Engine
	Template  = engine.Template
	Option    = engine.Option
	Config    = engine.Config
	DirConfig = engine.DirConfig
	Methods   = engine.Methods
)

// New returns an autoescaping engine rooted at dir.
func New(dir string, opts ...Option) (*Engine, error) {
	return engine.New(append([]Option{engine.WithDir(dir)}, opts...)...)
}

// NewUnescaped returns an engine rooted at dir that binds values unwrapped.
func NewUnescaped(dir string, opts ...Option) (*Engine, error) {
	return engine.NewUnescaped(append([]Option{engine.WithDir(dir)}, opts...)...)
}
