// Package engine renders text/template files with automatic escaping,
// layouts, sections and inserted partials.
//
// Every value handed to a template is wrapped in a proxy (see package proxy)
// so that strings are HTML-escaped exactly once when printed. Templates
// compose through a small set of bound functions:
//
//	{{layout "layouts/base" (dict "title" "Home")}}
//	{{start "scripts"}}<script src="/app.js"></script>{{stop}}
//	<h1>{{.title}}</h1>
//	{{insert "partials/footer"}}
//
// and a layout prints the wrapped content with {{body}} and closed sections
// with {{section "scripts"}}.
package engine

import (
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/goliatone/go-boiler/internal/logfields"
	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/metrics"
	"github.com/goliatone/go-boiler/pkg/resolver"
	"github.com/goliatone/go-boiler/pkg/sanitizer"
	"github.com/goliatone/go-boiler/pkg/value"
)

// Engine resolves and renders templates. It is safe for concurrent use.
type Engine struct {
	resolver   *resolver.Resolver
	autoescape bool
	defaults   map[string]any
	whitelist  value.Whitelist
	maxDepth   int
	logger     *slog.Logger
	metrics    metrics.Recorder
	sanitizer  sanitizer.Sanitizer
	methods    *Methods
	cache      *templateCache
}

// New constructs an engine that escapes by default.
func New(options ...Option) (*Engine, error) {
	return build(newConfig(true), options)
}

// NewUnescaped constructs an engine that binds values raw by default.
func NewUnescaped(options ...Option) (*Engine, error) {
	return build(newConfig(false), options)
}

func build(cfg *config, options []Option) (*Engine, error) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	res, err := resolver.New(cfg.roots, resolver.WithExtension(cfg.extension))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		resolver:   res,
		autoescape: cfg.autoescape,
		defaults:   cfg.defaults,
		whitelist:  cfg.whitelist,
		maxDepth:   cfg.maxDepth,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		sanitizer:  cfg.sanitizer,
		methods:    NewMethods(),
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.metrics == nil {
		e.metrics = metrics.NoopRecorder{}
	}
	if e.sanitizer == nil {
		e.sanitizer = sanitizer.Default()
	}
	e.cache = newTemplateCache(cfg.cache, e.metrics)

	names := make([]string, 0, len(cfg.methods))
	for name := range cfg.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.methods.Register(name, cfg.methods[name]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Autoescape reports the engine's default escaping mode.
func (e *Engine) Autoescape() bool { return e.autoescape }

// Roots returns the resolved template roots in search order.
func (e *Engine) Roots() []resolver.Root { return e.resolver.Roots() }

// Extension returns the extension appended to paths without one.
func (e *Engine) Extension() string { return e.resolver.Extension() }

// Template resolves path into a handle with its own copy of the engine's
// methods.
func (e *Engine) Template(path string) (*Template, error) {
	t, err := e.lookup(path)
	if err != nil {
		return nil, err
	}
	t.methods = e.methods.Clone()
	return t, nil
}

func (e *Engine) lookup(path string) (*Template, error) {
	file, err := e.resolver.Locate(path)
	if err != nil {
		return nil, err
	}
	return &Template{engine: e, name: path, path: file, methods: e.methods}, nil
}

// Render renders path with the engine's autoescape setting.
func (e *Engine) Render(path string, data map[string]any) (string, error) {
	return e.render(path, data, e.autoescape)
}

// RenderEscaped renders path with autoescape on.
func (e *Engine) RenderEscaped(path string, data map[string]any) (string, error) {
	return e.render(path, data, true)
}

// RenderUnescaped renders path with autoescape off.
func (e *Engine) RenderUnescaped(path string, data map[string]any) (string, error) {
	return e.render(path, data, false)
}

// RenderTo renders path and writes the result to w. Nothing is written when
// rendering fails.
func (e *Engine) RenderTo(w io.Writer, path string, data map[string]any) error {
	out, err := e.Render(path, data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (e *Engine) render(path string, data map[string]any, autoescape bool) (string, error) {
	t, err := e.lookup(path)
	if err != nil {
		e.observe(path, "", autoescape, 0, 0, err)
		return "", err
	}
	return t.render(data, nil, autoescape)
}

// Exists reports whether path resolves to a template file.
func (e *Engine) Exists(path string) bool {
	return e.resolver.Exists(path)
}

// File resolves path to its absolute file.
func (e *Engine) File(path string) (string, error) {
	return e.resolver.Locate(path)
}

// RegisterMethod adds a custom function to every template rendered after
// the call.
func (e *Engine) RegisterMethod(name string, fn any) error {
	if err := e.methods.Register(name, fn); err != nil {
		return err
	}
	e.logger.Debug("method registered", logfields.Method(name))
	return nil
}

// Methods returns the engine's method registry.
func (e *Engine) Methods() *Methods { return e.methods }

// Purge drops cached parses of the given files, or of every file when none
// is given. It returns the number of entries removed.
func (e *Engine) Purge(files ...string) int {
	if len(files) == 0 {
		return e.cache.purge("")
	}
	n := 0
	for _, file := range files {
		if file == "" {
			continue
		}
		n += e.cache.purge(file)
	}
	return n
}

// merge layers per-call data over the engine defaults.
func (e *Engine) merge(data map[string]any) map[string]any {
	if len(e.defaults) == 0 {
		return data
	}
	out := make(map[string]any, len(e.defaults)+len(data))
	for k, v := range e.defaults {
		out[k] = v
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (e *Engine) observe(name, id string, autoescape bool, d time.Duration, depth int, err error) {
	if err != nil {
		kind, _ := berrors.KindOf(err)
		e.metrics.ObserveRenderDuration(d, metrics.ResultFailed)
		e.metrics.IncRenderError(string(kind))
		e.logger.Warn("template render failed",
			logfields.Template(name),
			logfields.RenderID(id),
			logfields.Autoescape(autoescape),
			logfields.ErrorKind(string(kind)),
			logfields.Error(err),
		)
		return
	}
	e.metrics.ObserveRenderDuration(d, metrics.ResultSuccess)
	e.metrics.ObserveLayoutDepth(depth)
	e.logger.Debug("template rendered",
		logfields.Template(name),
		logfields.RenderID(id),
		logfields.Autoescape(autoescape),
		logfields.Depth(depth),
		logfields.Duration(d),
	)
}
