package engine

import (
	"bytes"
	"fmt"
	"sync"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/proxy"
	"github.com/goliatone/go-boiler/pkg/sections"
	"github.com/goliatone/go-boiler/pkg/value"
)

type execKind int

const (
	kindLeaf execKind = iota
	kindLayout
	kindInsert
)

// LayoutDeclaration is set by a template body calling layout. Context, when
// present, is merged over the bindings the layout receives.
type LayoutDeclaration struct {
	Path    string
	Context map[string]any
}

// renderState is shared by every execution of one render pass.
type renderState struct {
	engine    *Engine
	id        string
	sections  *sections.Stack
	whitelist value.Whitelist
	opts      proxy.Options

	methodNames []string
	methodFuncs map[string]any

	inserts int
}

// execution is one run of one template file: the leaf, a layout or an
// inserted partial.
type execution struct {
	state *renderState
	kind  execKind
	path  string
	name  string
	body  string

	layout    *LayoutDeclaration
	capturing bool
	ctx       *TemplateContext
}

// run executes the file with data bound into a fresh context. Output is
// buffered and only returned on success.
func (x *execution) run(data map[string]any) (out string, err error) {
	parsed, err := x.state.engine.cache.load(x.path, x.state.methodNames)
	if err != nil {
		return "", err
	}
	tmpl, err := parsed.Clone()
	if err != nil {
		return "", berrors.Render(x.path, err)
	}
	x.ctx = newTemplateContext(x, data, x.state.whitelist, x.state.opts)
	tmpl.Funcs(x.funcs())

	buf := getBuffer()
	defer putBuffer(buf)
	defer func() {
		if r := recover(); r != nil {
			x.abort()
			out, err = "", berrors.Render(x.path, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := tmpl.Execute(&captureWriter{x: x, out: buf}, x.ctx.values); err != nil {
		x.abort()
		return "", x.wrap(err)
	}
	if x.capturing {
		x.capturing = false
		return "", berrors.Render(x.path, x.state.sections.Finish())
	}
	return buf.String(), nil
}

// abort drops a capture this execution left open.
func (x *execution) abort() {
	if x.capturing {
		x.capturing = false
		x.state.sections.Discard()
	}
}

// wrap turns an execution failure into a render error for this file. A
// render error raised by a nested file already names it and passes through.
func (x *execution) wrap(err error) error {
	var inner *berrors.Error
	if berrors.As(err, &inner) && inner.Kind == berrors.KindRender && inner.Path != "" {
		return inner
	}
	return berrors.Render(x.path, err)
}

// captureWriter routes output into the open section while this execution
// is capturing and into the execution's buffer otherwise.
type captureWriter struct {
	x   *execution
	out *bytes.Buffer
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if w.x.capturing {
		return w.x.state.sections.Write(p)
	}
	return w.out.Write(p)
}

const maxPooledBuffer = 64 << 10

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}
