package engine_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-boiler/internal/logfields"
	"github.com/goliatone/go-boiler/pkg/engine"
	"github.com/goliatone/go-boiler/pkg/metrics"
	"github.com/goliatone/go-boiler/pkg/testsupport"
)

type fakeRecorder struct {
	mu      sync.Mutex
	results []metrics.ResultLabel
	errors  []string
	depths  []int
	hits    int
	misses  int
}

func (f *fakeRecorder) ObserveRenderDuration(_ time.Duration, result metrics.ResultLabel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

func (f *fakeRecorder) IncRenderError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, kind)
}

func (f *fakeRecorder) ObserveLayoutDepth(depth int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depths = append(f.depths, depth)
}

func (f *fakeRecorder) IncTemplateCache(hit bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if hit {
		f.hits++
		return
	}
	f.misses++
}

func TestMetricsAndLogging(t *testing.T) {
	rec := &fakeRecorder{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng := newEngine(t, map[string]string{
		"layout.tpl": "[{{body}}]",
		"page.tpl":   `{{layout "layout"}}page`,
		"bad.tpl":    "{{.missing}}",
	}, engine.WithMetrics(rec), engine.WithLogger(logger))

	mustRender(t, eng, "page", nil)
	mustRender(t, eng, "page", nil)
	if _, err := eng.Render("bad", nil); err == nil {
		t.Fatalf("expected error")
	}

	want := []metrics.ResultLabel{metrics.ResultSuccess, metrics.ResultSuccess, metrics.ResultFailed}
	if diff := cmp.Diff(want, rec.results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 1}, rec.depths); diff != "" {
		t.Fatalf("depths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"render"}, rec.errors); diff != "" {
		t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
	}
	if rec.misses != 3 || rec.hits != 2 {
		t.Fatalf("cache hits=%d misses=%d, want 2 and 3", rec.hits, rec.misses)
	}

	var sawRendered, sawFailed, sawLayout bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		switch entry["msg"] {
		case "template rendered":
			sawRendered = true
			if id, _ := entry[logfields.KeyRenderID].(string); len(id) != 36 {
				t.Fatalf("render id = %v", entry[logfields.KeyRenderID])
			}
		case "layout applied":
			sawLayout = entry[logfields.KeyLayout] == "layout"
		case "template render failed":
			sawFailed = entry[logfields.KeyErrorKind] == "render" && entry[logfields.KeyTemplate] == "bad"
		}
	}
	if !sawRendered || !sawFailed || !sawLayout {
		t.Fatalf("missing log entries in:\n%s", logs.String())
	}
}

func TestCacheFollowsFileChanges(t *testing.T) {
	rec := &fakeRecorder{}
	dir := testsupport.WriteTemplates(t, map[string]string{"page.tpl": "one"})
	eng, err := engine.New(engine.WithDir(dir), engine.WithMetrics(rec))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	if got := mustRender(t, eng, "page", nil); got != "one" {
		t.Fatalf("first render = %q", got)
	}
	testsupport.WriteFile(t, dir+"/page.tpl", "second version")
	if got := mustRender(t, eng, "page", nil); got != "second version" {
		t.Fatalf("render after change = %q", got)
	}

	file, err := eng.File("page")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if n := eng.Purge(file); n != 1 {
		t.Fatalf("Purge(%s) = %d, want 1", file, n)
	}
	mustRender(t, eng, "page", nil)
	if n := eng.Purge(); n != 1 {
		t.Fatalf("Purge() = %d, want 1", n)
	}
}

func TestCacheCanBeDisabled(t *testing.T) {
	rec := &fakeRecorder{}
	eng := newEngine(t, map[string]string{"page.tpl": "x"}, engine.WithCache(false), engine.WithMetrics(rec))
	mustRender(t, eng, "page", nil)
	mustRender(t, eng, "page", nil)
	if rec.hits != 0 || rec.misses != 0 {
		t.Fatalf("disabled cache recorded hits=%d misses=%d", rec.hits, rec.misses)
	}
	if n := eng.Purge(); n != 0 {
		t.Fatalf("Purge() = %d on a disabled cache", n)
	}
}
