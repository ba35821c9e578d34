package resolver_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/resolver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// fixture lays out:
//
//	base/default/simple.tpl
//	base/default/sub/page.tpl
//	base/default/notes.txt
//	base/additional/simple.tpl
//	base/additional/extra.tpl
//	base/unreachable.tpl
func fixture(t *testing.T) string {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval temp dir: %v", err)
	}
	writeFile(t, filepath.Join(base, "default", "simple.tpl"), "default")
	writeFile(t, filepath.Join(base, "default", "sub", "page.tpl"), "page")
	writeFile(t, filepath.Join(base, "default", "notes.txt"), "notes")
	writeFile(t, filepath.Join(base, "additional", "simple.tpl"), "additional")
	writeFile(t, filepath.Join(base, "additional", "extra.tpl"), "extra")
	writeFile(t, filepath.Join(base, "unreachable.tpl"), "secret")
	return base
}

func newResolver(t *testing.T, roots ...resolver.Root) *resolver.Resolver {
	t.Helper()
	r, err := resolver.New(roots)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	return r
}

func TestLocateAppendsExtension(t *testing.T) {
	base := fixture(t)
	r := newResolver(t, resolver.Root{Dir: filepath.Join(base, "default")})

	cases := map[string]string{
		"simple":     filepath.Join(base, "default", "simple.tpl"),
		"simple.tpl": filepath.Join(base, "default", "simple.tpl"),
		"sub/page":   filepath.Join(base, "default", "sub", "page.tpl"),
		"notes.txt":  filepath.Join(base, "default", "notes.txt"),
		" simple ":   "",
	}
	for path, want := range cases {
		got, err := r.Locate(path)
		if want == "" {
			if !errors.Is(err, berrors.ErrLookup) {
				t.Errorf("Locate(%q) error = %v, want lookup error", path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Locate(%q): %v", path, err)
			continue
		}
		if got != want {
			t.Errorf("Locate(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestNamespacePrecedence(t *testing.T) {
	base := fixture(t)
	r := newResolver(t,
		resolver.Root{Namespace: "default", Dir: filepath.Join(base, "default")},
		resolver.Root{Namespace: "additional", Dir: filepath.Join(base, "additional")},
	)

	got, err := r.Locate("simple")
	if err != nil || got != filepath.Join(base, "default", "simple.tpl") {
		t.Fatalf("first root must win: %s, %v", got, err)
	}

	got, err = r.Locate("additional:simple")
	if err != nil || got != filepath.Join(base, "additional", "simple.tpl") {
		t.Fatalf("explicit namespace must select its root: %s, %v", got, err)
	}

	got, err = r.Locate("extra")
	if err != nil || got != filepath.Join(base, "additional", "extra.tpl") {
		t.Fatalf("search must fall through to later roots: %s, %v", got, err)
	}

	if _, err := r.Locate("default:extra"); !errors.Is(err, berrors.ErrLookup) {
		t.Fatalf("namespaced lookup must not fall through, got %v", err)
	}
}

func TestLocateErrors(t *testing.T) {
	base := fixture(t)
	r := newResolver(t, resolver.Root{Namespace: "default", Dir: filepath.Join(base, "default")})

	cases := []struct {
		path string
		msg  string
	}{
		{"", "invalid or empty"},
		{"simple?x", "invalid or empty"},
		{"../unreachable", "outside of root directory"},
		{".././../.././../etc/passwd", "template not found"},
		{"missing", "template not found"},
		{"sub", "template not found"},
		{"unknown:simple", "namespace `unknown` does not exist"},
		{"default:sub:page", "invalid template format"},
		{":simple", "invalid template format"},
		{"default:", "invalid template format"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := r.Locate(tc.path)
			if !errors.Is(err, berrors.ErrLookup) {
				t.Fatalf("Locate(%q) error = %v, want lookup error", tc.path, err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("Locate(%q) error = %q, want it to contain %q", tc.path, err, tc.msg)
			}
			if r.Exists(tc.path) {
				t.Fatalf("Exists(%q) must be false", tc.path)
			}
		})
	}
}

func TestSymlinkOutsideRootIsRejected(t *testing.T) {
	base := fixture(t)
	link := filepath.Join(base, "default", "escape.tpl")
	if err := os.Symlink(filepath.Join(base, "unreachable.tpl"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	r := newResolver(t, resolver.Root{Dir: filepath.Join(base, "default")})

	_, err := r.Locate("escape")
	if err == nil || !strings.Contains(err.Error(), "outside of root directory") {
		t.Fatalf("symlink escape error = %v", err)
	}
}

func TestNewValidatesDirectories(t *testing.T) {
	base := fixture(t)

	_, err := resolver.New([]resolver.Root{{Dir: filepath.Join(base, "nope")}})
	if !errors.Is(err, berrors.ErrLookup) || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("missing dir error = %v", err)
	}

	_, err = resolver.New(nil)
	if !errors.Is(err, berrors.ErrLookup) {
		t.Fatalf("no roots error = %v", err)
	}

	_, err = resolver.New([]resolver.Root{
		{Namespace: "a", Dir: filepath.Join(base, "default")},
		{Namespace: "a", Dir: filepath.Join(base, "additional")},
	})
	if !errors.Is(err, berrors.ErrConfiguration) {
		t.Fatalf("duplicate namespace error = %v", err)
	}

	r, err := resolver.New([]resolver.Root{{Dir: filepath.Join(base, "default", "..", "default")}},
		resolver.WithExtension("txt"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []resolver.Root{{Dir: filepath.Join(base, "default")}}
	if diff := cmp.Diff(want, r.Roots()); diff != "" {
		t.Fatalf("roots mismatch (-want +got):\n%s", diff)
	}
	if r.Extension() != ".txt" || !r.Exists("notes") {
		t.Fatalf("custom extension not applied")
	}
}

func TestValidPath(t *testing.T) {
	for _, p := range []string{"a", "ns:dir/file.tpl", "a-b_c.d"} {
		if !resolver.ValidPath(p) {
			t.Errorf("ValidPath(%q) = false", p)
		}
	}
	for _, p := range []string{"", "a b", "a\\b", "é", "a;b"} {
		if resolver.ValidPath(p) {
			t.Errorf("ValidPath(%q) = true", p)
		}
	}
}
