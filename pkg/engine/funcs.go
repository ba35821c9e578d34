package engine

import (
	"reflect"
	"text/template"
	"unicode/utf8"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/proxy"
	"github.com/goliatone/go-boiler/pkg/sanitizer"
	"github.com/goliatone/go-boiler/pkg/sections"
	"github.com/goliatone/go-boiler/pkg/value"
)

// builtinNames are the functions every execution binds.
var builtinNames = []string{
	"layout", "start", "append", "prepend", "stop", "section", "has",
	"body", "insert", "e", "escape", "clean", "strip", "bind", "dict", "list",
	"len", "index",
}

func (x *execution) funcs() template.FuncMap {
	fm := template.FuncMap{
		"layout":  x.layoutFunc,
		"start":   func(name any) (string, error) { return x.startSection(name, sections.Assign) },
		"append":  func(name any) (string, error) { return x.startSection(name, sections.Append) },
		"prepend": func(name any) (string, error) { return x.startSection(name, sections.Prepend) },
		"stop":    x.stopSection,
		"section": x.section,
		"has":     func(name any) bool { return x.state.sections.Has(text(name)) },
		"body":    x.bodyFunc,
		"insert":  x.insert,
		"e":       escape,
		"escape":  escape,
		"clean":   func(v any) string { return x.state.engine.sanitizer.Clean(text(v)) },
		"strip":   func(v any, allowed ...string) string { return sanitizer.Strip(text(v), allowed...) },
		"bind":    func(name, v any) any { return x.ctx.Add(text(name), v) },
		"dict":    dict,
		"list":    list,
		"len":     length,
		"index":   x.index,
	}
	for _, name := range x.state.methodNames {
		fm[name] = x.method(name, x.state.methodFuncs[name])
	}
	return fm
}

// text turns a template argument into plain, unescaped text.
func text(v any) string {
	return value.Stringify(proxy.Unwrap(v))
}

func escape(v any) string {
	return value.Escape(text(v))
}

// layoutFunc declares the layout with a path and an optional map. Without
// arguments it returns the declared path.
func (x *execution) layoutFunc(args ...any) (string, error) {
	if len(args) == 0 {
		if x.layout == nil {
			return "", nil
		}
		return x.layout.Path, nil
	}
	if x.kind == kindInsert {
		return "", berrors.Configurationf("layout", "inserted templates cannot declare a layout")
	}
	if len(args) > 2 {
		return "", berrors.InvalidArgumentf("layout", "layout expects a path and an optional map, got %d arguments", len(args))
	}
	path := text(args[0])
	if x.layout != nil {
		return "", berrors.Configurationf(path, "layout already set")
	}
	decl := &LayoutDeclaration{Path: path}
	if len(args) == 2 {
		m, err := bindings("layout", args[1])
		if err != nil {
			return "", err
		}
		decl.Context = m
	}
	x.layout = decl
	return "", nil
}

func (x *execution) startSection(name any, mode sections.Mode) (string, error) {
	if err := x.state.sections.Start(text(name), mode); err != nil {
		return "", err
	}
	x.capturing = true
	return "", nil
}

// stopSection only closes a section this execution opened.
func (x *execution) stopSection() (string, error) {
	if !x.capturing {
		return "", berrors.Renderf("", "cannot stop an unopened section")
	}
	x.capturing = false
	return "", x.state.sections.Stop()
}

func (x *execution) section(name any, def ...any) string {
	if len(def) == 0 {
		return x.state.sections.Get(text(name))
	}
	return x.state.sections.Get(text(name), text(def[0]))
}

func (x *execution) bodyFunc() (string, error) {
	if x.kind != kindLayout {
		return "", berrors.Renderf("body", "body is only available in layouts")
	}
	return x.body, nil
}

// insert renders a partial with the current bindings merged with an
// optional map. The partial shares the section stack but cannot declare a
// layout.
func (x *execution) insert(path any, data ...any) (string, error) {
	p := text(path)
	engine := x.state.engine
	if x.state.inserts >= engine.maxDepth {
		return "", berrors.DepthExceeded(p, "insert nesting", engine.maxDepth)
	}
	if len(data) > 1 {
		return "", berrors.InvalidArgumentf("insert", "insert expects a path and an optional map, got %d arguments", len(data)+1)
	}
	file, err := engine.resolver.Locate(p)
	if err != nil {
		return "", err
	}
	var extra map[string]any
	if len(data) == 1 {
		if extra, err = bindings("insert", data[0]); err != nil {
			return "", err
		}
	}

	child := &execution{state: x.state, kind: kindInsert, path: file, name: p}
	x.state.inserts++
	defer func() { x.state.inserts-- }()
	return child.run(x.ctx.Context(extra))
}

// method binds a custom function. Arguments are unwrapped where the
// parameter type needs it and the result is bound like any context value.
func (x *execution) method(name string, fn any) func(...any) (any, error) {
	return func(args ...any) (any, error) {
		res, err := value.Call(name, fn, args...)
		if err != nil {
			return nil, err
		}
		return x.ctx.bind(res), nil
	}
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, berrors.InvalidArgumentf("dict", "dict expects key/value pairs, got %d arguments", len(pairs))
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out[text(pairs[i])] = pairs[i+1]
	}
	return out, nil
}

func list(values ...any) *value.Map {
	raw := make([]any, len(values))
	for i, v := range values {
		raw[i] = proxy.Unwrap(v)
	}
	return value.List(raw...)
}

// bindings accepts the map argument of layout and insert.
func bindings(fn string, arg any) (map[string]any, error) {
	raw := proxy.Unwrap(arg)
	switch m := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	case *value.Map:
		out := make(map[string]any, m.Len())
		for k, v := range m.All() {
			out[value.Stringify(k)] = v
		}
		return out, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, berrors.InvalidArgumentf(fn, "%s expects a map with string keys, got %T", fn, raw)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

// length replaces the len builtin so proxies report their element count.
// Strings count runes in both modes.
func length(v any) (int, error) {
	if l, ok := v.(interface{ Len() int }); ok {
		return l.Len(), nil
	}
	raw := proxy.Unwrap(v)
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), nil
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice:
		return rv.Len(), nil
	}
	return 0, berrors.InvalidArgumentf("len", "len of %T", raw)
}

// index replaces the index builtin. Each key is looked up through a Seq
// proxy, so missing keys are out-of-bounds errors. A raw argument yields a
// raw result.
func (x *execution) index(item any, keys ...any) (any, error) {
	_, wrapped := item.(proxy.Proxy)
	cur := item
	for _, k := range keys {
		s, ok := proxy.WrapWith(cur, x.state.opts).(*proxy.Seq)
		if !ok {
			return nil, berrors.InvalidArgumentf("index", "cannot index %T", proxy.Unwrap(cur))
		}
		v, err := s.Get(k)
		if err != nil {
			return nil, err
		}
		cur = v
	}
	if !wrapped {
		return proxy.Unwrap(cur), nil
	}
	return cur, nil
}
