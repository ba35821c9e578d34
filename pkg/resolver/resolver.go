// Package resolver maps template paths such as "admin:users/list" or
// "users/list" to files below a set of root directories.
//
// Roots are searched in the order they were configured; a namespaced path
// only looks at the root bound to that namespace. Paths are validated before
// the filesystem is touched, and a file whose real path lies outside its
// root is rejected.
package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
)

// DefaultExtension is appended to template paths that have none.
const DefaultExtension = ".tpl"

// Root is a template directory, optionally bound to a namespace.
type Root struct {
	Namespace string
	Dir       string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtension overrides DefaultExtension. A missing leading dot is added.
func WithExtension(ext string) Option {
	return func(r *Resolver) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		r.ext = trimmed
	}
}

// Resolver locates template files. It is immutable after New and safe for
// concurrent use.
type Resolver struct {
	roots []Root
	ext   string
}

var validPath = regexp.MustCompile(`^[A-Za-z0-9_./:-]+$`)

// ValidPath reports whether path is non-empty and only uses the characters
// allowed in template paths.
func ValidPath(path string) bool {
	return validPath.MatchString(path)
}

// New builds a resolver over roots. Every directory is made absolute and
// symlink-free up front; a missing directory is a lookup error.
func New(roots []Root, opts ...Option) (*Resolver, error) {
	if len(roots) == 0 {
		return nil, berrors.Lookupf("", "no template directory configured")
	}
	r := &Resolver{ext: DefaultExtension}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		ns := strings.TrimSpace(root.Namespace)
		if ns != "" {
			if _, dup := seen[ns]; dup {
				return nil, berrors.Configurationf(ns, "template namespace `%s` configured twice", ns)
			}
			seen[ns] = struct{}{}
		}
		dir, err := realDir(root.Dir)
		if err != nil {
			return nil, err
		}
		r.roots = append(r.roots, Root{Namespace: ns, Dir: dir})
	}
	return r, nil
}

func realDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", berrors.Lookupf(dir, "template directory does not exist: empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", berrors.Lookupf(dir, "template directory does not exist %s", dir)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", berrors.Lookupf(dir, "template directory does not exist %s", dir)
	}
	info, err := os.Stat(real)
	if err != nil || !info.IsDir() {
		return "", berrors.Lookupf(dir, "template directory does not exist %s", dir)
	}
	return real, nil
}

// Roots returns the resolved roots in search order.
func (r *Resolver) Roots() []Root {
	out := make([]Root, len(r.roots))
	copy(out, r.roots)
	return out
}

// Extension returns the extension appended to bare paths.
func (r *Resolver) Extension() string { return r.ext }

// Locate returns the absolute path of the template file for path.
func (r *Resolver) Locate(path string) (string, error) {
	if !ValidPath(path) {
		return "", berrors.Lookupf(path, "the template path is invalid or empty")
	}
	namespace, file, err := segments(path)
	if err != nil {
		return "", err
	}

	if namespace != "" {
		for _, root := range r.roots {
			if root.Namespace == namespace {
				return r.locateIn(root, file, path)
			}
		}
		return "", berrors.Lookupf(path, "template namespace `%s` does not exist", namespace)
	}

	var lastErr error
	for _, root := range r.roots {
		found, err := r.locateIn(root, file, path)
		if err == nil {
			return found, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// Exists reports whether Locate would succeed.
func (r *Resolver) Exists(path string) bool {
	_, err := r.Locate(path)
	return err == nil
}

func segments(path string) (string, string, error) {
	if !strings.Contains(path, ":") {
		return "", strings.TrimSpace(path), nil
	}
	parts := strings.Split(path, ":")
	if len(parts) == 2 {
		ns, file := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if ns != "" && file != "" {
			return ns, file, nil
		}
	}
	return "", "", berrors.Lookupf(path,
		"invalid template format: '%s'. Use 'namespace:template/path' or 'template/path'", path)
}

func (r *Resolver) locateIn(root Root, file, requested string) (string, error) {
	if filepath.Ext(file) == "" {
		file += r.ext
	}
	candidate := filepath.Join(root.Dir, filepath.FromSlash(file))

	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return "", berrors.Lookupf(requested, "template not found: %s", candidate)
	}

	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", berrors.Lookupf(requested, "template not found: %s", candidate)
	}
	rel, err := filepath.Rel(root.Dir, real)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", berrors.Lookupf(requested, "template resides outside of root directory: %s", real)
	}
	return real, nil
}
