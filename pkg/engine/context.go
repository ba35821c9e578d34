package engine

import (
	"github.com/goliatone/go-boiler/pkg/proxy"
	"github.com/goliatone/go-boiler/pkg/value"
)

// TemplateContext holds the names bound for one template execution. With
// autoescape on every value is wrapped in a proxy unless its type is
// whitelisted; with autoescape off values are bound raw. An untyped nil is
// always bound as value.Null.
type TemplateContext struct {
	exec      *execution
	values    map[string]any
	whitelist value.Whitelist
	opts      proxy.Options
}

func newTemplateContext(x *execution, data map[string]any, whitelist value.Whitelist, opts proxy.Options) *TemplateContext {
	c := &TemplateContext{
		exec:      x,
		values:    make(map[string]any, len(data)),
		whitelist: whitelist,
		opts:      opts,
	}
	for name, v := range data {
		c.values[name] = c.bind(v)
	}
	return c
}

func (c *TemplateContext) bind(v any) any {
	switch {
	case v == nil:
		return value.Null("")
	case c.whitelist.Contains(v):
		return v
	case c.opts.Autoescape:
		return proxy.WrapWith(v, c.opts)
	}
	return v
}

// Add binds one more name and returns the bound value.
func (c *TemplateContext) Add(name string, v any) any {
	bound := c.bind(v)
	c.values[name] = bound
	return bound
}

// Get returns the bound value of name.
func (c *TemplateContext) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Context returns a fresh copy of the bindings merged with extra. Extra
// values are bound the same way as the originals.
func (c *TemplateContext) Context(extra ...map[string]any) map[string]any {
	size := len(c.values)
	for _, m := range extra {
		size += len(m)
	}
	out := make(map[string]any, size)
	for name, v := range c.values {
		out[name] = v
	}
	for _, m := range extra {
		for name, v := range m {
			out[name] = c.bind(v)
		}
	}
	return out
}

// Autoescape reports whether the execution escapes bound values.
func (c *TemplateContext) Autoescape() bool { return c.opts.Autoescape }

// Path returns the file being executed.
func (c *TemplateContext) Path() string { return c.exec.path }
