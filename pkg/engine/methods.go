package engine

import (
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// textBuiltins are the functions text/template predefines.
var textBuiltins = []string{
	"and", "or", "not", "len", "index", "slice", "print", "printf", "println",
	"html", "js", "urlquery", "call", "eq", "ne", "lt", "le", "gt", "ge",
}

// reserved reports whether name belongs to the engine or to text/template.
// Custom methods cannot shadow those.
func reserved(name string) bool {
	return slices.Contains(builtinNames, name) || slices.Contains(textBuiltins, name)
}

// Methods stores custom template functions by name.
type Methods struct {
	mu    sync.RWMutex
	funcs map[string]any
}

// NewMethods creates an empty registry.
func NewMethods() *Methods {
	return &Methods{funcs: make(map[string]any)}
}

// Register adds fn under name. The name must be an identifier that is neither
// reserved nor registered yet, and fn must return at most two results, the
// second being an error.
func (m *Methods) Register(name string, fn any) error {
	name = strings.TrimSpace(name)
	if !identPattern.MatchString(name) {
		return berrors.Configurationf(name, "method name %q is not a valid identifier", name)
	}
	if reserved(name) {
		return berrors.Configurationf(name, "method name %q is reserved", name)
	}
	if err := checkMethod(name, fn); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.funcs[name]; exists {
		return berrors.Configurationf(name, "method %q already registered", name)
	}
	m.funcs[name] = fn
	return nil
}

// MustRegister panics on registration failure.
func (m *Methods) MustRegister(name string, fn any) {
	if err := m.Register(name, fn); err != nil {
		panic(err)
	}
}

func checkMethod(name string, fn any) error {
	if fn == nil {
		return berrors.Configurationf(name, "method %q is nil", name)
	}
	ft := reflect.TypeOf(fn)
	if ft.Kind() != reflect.Func {
		return berrors.Configurationf(name, "method %q is %T, not a function", name, fn)
	}
	switch {
	case ft.NumOut() > 2:
		return berrors.Configurationf(name, "method %q returns %d values", name, ft.NumOut())
	case ft.NumOut() == 2 && ft.Out(1) != errorType:
		return berrors.Configurationf(name, "method %q: second result must be an error", name)
	}
	return nil
}

// Get retrieves a method by name.
func (m *Methods) Get(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fn, ok := m.funcs[name]
	return fn, ok
}

// Has reports whether a method is registered.
func (m *Methods) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// List returns the sorted method names.
func (m *Methods) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered methods.
func (m *Methods) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.funcs)
}

// Clone returns an independent copy.
func (m *Methods) Clone() *Methods {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp := &Methods{funcs: make(map[string]any, len(m.funcs))}
	for name, fn := range m.funcs {
		cp.funcs[name] = fn
	}
	return cp
}

// snapshot returns the sorted names and their functions under one lock.
func (m *Methods) snapshot() ([]string, map[string]any) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.funcs))
	funcs := make(map[string]any, len(m.funcs))
	for name, fn := range m.funcs {
		names = append(names, name)
		funcs[name] = fn
	}
	sort.Strings(names)
	return names, funcs
}
