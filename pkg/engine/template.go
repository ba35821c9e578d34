package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-boiler/internal/logfields"
	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/proxy"
	"github.com/goliatone/go-boiler/pkg/sections"
)

// Template is a resolved template file. A handle can be rendered any number
// of times, also concurrently; every render gets fresh state.
type Template struct {
	engine  *Engine
	name    string
	path    string
	methods *Methods
}

// Name returns the path the template was requested with.
func (t *Template) Name() string { return t.name }

// Path returns the resolved file.
func (t *Template) Path() string { return t.path }

// RegisterMethod adds a custom function visible to this handle only.
func (t *Template) RegisterMethod(name string, fn any) error {
	return t.methods.Register(name, fn)
}

// Methods returns the handle's method registry.
func (t *Template) Methods() *Methods { return t.methods }

// Render renders with the engine's autoescape setting. Whitelist samples
// extend the engine's whitelist for this call.
func (t *Template) Render(data map[string]any, whitelist ...any) (string, error) {
	return t.render(data, whitelist, t.engine.autoescape)
}

// RenderEscaped renders with autoescape on.
func (t *Template) RenderEscaped(data map[string]any, whitelist ...any) (string, error) {
	return t.render(data, whitelist, true)
}

// RenderUnescaped renders with autoescape off.
func (t *Template) RenderUnescaped(data map[string]any, whitelist ...any) (string, error) {
	return t.render(data, whitelist, false)
}

func (t *Template) render(data map[string]any, whitelist []any, autoescape bool) (string, error) {
	e := t.engine
	started := time.Now()
	names, funcs := t.methods.snapshot()
	closers := &proxy.Closers{}
	defer closers.Close()
	state := &renderState{
		engine:      e,
		id:          uuid.NewString(),
		sections:    sections.New(),
		whitelist:   e.whitelist.With(whitelist...),
		opts:        proxy.Options{Autoescape: autoescape, Sanitizer: e.sanitizer, Closers: closers},
		methodNames: names,
		methodFuncs: funcs,
	}

	out, depth, err := t.compose(state, e.merge(data))
	e.observe(t.name, state.id, autoescape, time.Since(started), depth, err)
	if err != nil {
		return "", err
	}
	return out, nil
}

// compose runs the template, then every layout it declares, innermost
// first. Each layout receives the template's bindings merged with its own
// declaration's map, and wraps the content produced so far.
func (t *Template) compose(state *renderState, data map[string]any) (string, int, error) {
	e := state.engine
	leaf := &execution{state: state, kind: kindLeaf, path: t.path, name: t.name}
	content, err := leaf.run(data)
	if err != nil {
		return "", 0, err
	}

	depth := 0
	for decl := leaf.layout; decl != nil; {
		if depth >= e.maxDepth {
			return "", depth, berrors.DepthExceeded(decl.Path, "layout chain", e.maxDepth)
		}
		depth++

		file, err := e.resolver.Locate(decl.Path)
		if err != nil {
			return "", depth, err
		}
		layout := &execution{state: state, kind: kindLayout, path: file, name: decl.Path, body: content}
		if content, err = layout.run(leaf.ctx.Context(decl.Context)); err != nil {
			return "", depth, err
		}
		e.logger.Debug("layout applied",
			logfields.Template(t.name),
			logfields.Layout(decl.Path),
			logfields.RenderID(state.id),
			logfields.Depth(depth),
		)
		decl = layout.layout
	}
	return content, depth, nil
}
