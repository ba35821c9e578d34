package engine

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-boiler/pkg/metrics"
	"github.com/goliatone/go-boiler/pkg/resolver"
	"github.com/goliatone/go-boiler/pkg/sanitizer"
	"github.com/goliatone/go-boiler/pkg/value"
)

// DefaultMaxLayoutDepth bounds layout chains and nested inserts unless
// WithMaxLayoutDepth says otherwise.
const DefaultMaxLayoutDepth = 32

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	roots      []resolver.Root
	extension  string
	autoescape bool
	defaults   map[string]any
	whitelist  value.Whitelist
	maxDepth   int
	logger     *slog.Logger
	metrics    metrics.Recorder
	sanitizer  sanitizer.Sanitizer
	cache      bool
	methods    map[string]any
}

func newConfig(autoescape bool) *config {
	return &config{
		extension:  resolver.DefaultExtension,
		autoescape: autoescape,
		maxDepth:   DefaultMaxLayoutDepth,
		cache:      true,
	}
}

// WithDir adds an unnamespaced template root. Roots are searched in the order
// they were added.
func WithDir(dir string) Option {
	return func(cfg *config) {
		if dir = strings.TrimSpace(dir); dir == "" {
			return
		}
		cfg.roots = append(cfg.roots, resolver.Root{Dir: dir})
	}
}

// WithDirs adds several unnamespaced roots.
func WithDirs(dirs ...string) Option {
	return func(cfg *config) {
		for _, dir := range dirs {
			WithDir(dir)(cfg)
		}
	}
}

// WithNamespace adds a root addressable as "namespace:path". Namespaced roots
// also take part in unqualified lookups.
func WithNamespace(namespace, dir string) Option {
	return func(cfg *config) {
		cfg.roots = append(cfg.roots, resolver.Root{
			Namespace: strings.TrimSpace(namespace),
			Dir:       strings.TrimSpace(dir),
		})
	}
}

// WithDefaults seeds values available to every render. Per-call data wins.
func WithDefaults(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.defaults == nil {
			cfg.defaults = make(map[string]any, len(data))
		}
		for key, v := range data {
			cfg.defaults[strings.TrimSpace(key)] = v
		}
	}
}

// WithWhitelist binds values of the samples' concrete types unwrapped.
func WithWhitelist(samples ...any) Option {
	return func(cfg *config) {
		cfg.whitelist = cfg.whitelist.With(samples...)
	}
}

// WithExtension overrides the default template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithAutoescape overrides the flag chosen by New or NewUnescaped.
func WithAutoescape(on bool) Option {
	return func(cfg *config) {
		cfg.autoescape = on
	}
}

// WithMaxLayoutDepth bounds layout chains and insert nesting. Values below
// one are ignored.
func WithMaxLayoutDepth(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDepth = n
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(cfg *config) {
		cfg.metrics = recorder
	}
}

// WithSanitizer replaces the policy behind the clean helper and
// String.Clean.
func WithSanitizer(s sanitizer.Sanitizer) Option {
	return func(cfg *config) {
		cfg.sanitizer = s
	}
}

// WithCache toggles the parsed-template cache. Disabled, every execution
// re-reads and re-parses its file.
func WithCache(enabled bool) Option {
	return func(cfg *config) {
		cfg.cache = enabled
	}
}

// WithMethods registers custom template functions at construction.
func WithMethods(methods map[string]any) Option {
	return func(cfg *config) {
		if len(methods) == 0 {
			return
		}
		if cfg.methods == nil {
			cfg.methods = make(map[string]any, len(methods))
		}
		for name, fn := range methods {
			cfg.methods[strings.TrimSpace(name)] = fn
		}
	}
}

// WithConfig applies a file configuration. Options listed after it still
// override what it sets.
func WithConfig(c Config) Option {
	return func(cfg *config) {
		if c.Autoescape != nil {
			cfg.autoescape = *c.Autoescape
		}
		if c.Cache != nil {
			cfg.cache = *c.Cache
		}
		WithExtension(c.Extension)(cfg)
		WithMaxLayoutDepth(c.MaxLayoutDepth)(cfg)
		for _, dir := range c.Dirs {
			if dir.Namespace == "" {
				WithDir(dir.Path)(cfg)
				continue
			}
			WithNamespace(dir.Namespace, dir.Path)(cfg)
		}
		WithDefaults(c.Defaults)(cfg)
	}
}
