package engine

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/metrics"
)

// templateCache holds parsed templates keyed by file and method set. An entry
// is reused while the file's modification time and size are unchanged.
type templateCache struct {
	enabled bool
	metrics metrics.Recorder

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	tmpl    *template.Template
	modTime time.Time
	size    int64
}

func (e *cacheEntry) fresh(info os.FileInfo) bool {
	return e != nil && e.modTime.Equal(info.ModTime()) && e.size == info.Size()
}

func newTemplateCache(enabled bool, recorder metrics.Recorder) *templateCache {
	return &templateCache{
		enabled: enabled,
		metrics: recorder,
		entries: make(map[string]*cacheEntry),
	}
}

func cacheKey(path string, methods []string) string {
	return path + "\x00" + strings.Join(methods, ",")
}

// load returns the parsed template for path. Callers must Clone it before
// binding functions.
func (c *templateCache) load(path string, methods []string) (*template.Template, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, berrors.Lookupf(path, "template not found: %s", path)
	}
	if !c.enabled {
		return parseFile(path, methods)
	}

	key := cacheKey(path, methods)

	c.mu.RLock()
	entry := c.entries[key]
	c.mu.RUnlock()
	if entry.fresh(info) {
		c.metrics.IncTemplateCache(true)
		return entry.tmpl, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry = c.entries[key]; entry.fresh(info) {
		c.metrics.IncTemplateCache(true)
		return entry.tmpl, nil
	}
	c.metrics.IncTemplateCache(false)

	tmpl, err := parseFile(path, methods)
	if err != nil {
		return nil, err
	}
	c.entries[key] = &cacheEntry{tmpl: tmpl, modTime: info.ModTime(), size: info.Size()}
	return tmpl, nil
}

// purge drops the entries of path, or every entry when path is empty.
func (c *templateCache) purge(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path == "" {
		n := len(c.entries)
		c.entries = make(map[string]*cacheEntry)
		return n
	}
	n := 0
	prefix := path + "\x00"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

func parseFile(path string, methods []string) (*template.Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, berrors.Lookupf(path, "template not found: %s", path)
	}
	tmpl, err := template.New(filepath.Base(path)).
		Option("missingkey=error").
		Funcs(placeholderFuncs(methods)).
		Parse(string(src))
	if err != nil {
		return nil, berrors.Render(path, err)
	}
	return tmpl, nil
}

// placeholderFuncs makes every bindable name known to the parser. The real
// functions are bound per execution on a clone.
func placeholderFuncs(methods []string) template.FuncMap {
	noop := func(...any) (any, error) { return nil, nil }
	funcs := make(template.FuncMap, len(builtinNames)+len(methods))
	for _, name := range builtinNames {
		funcs[name] = noop
	}
	for _, name := range methods {
		funcs[name] = noop
	}
	return funcs
}
