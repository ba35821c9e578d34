package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-boiler/internal/logfields"
	"github.com/goliatone/go-boiler/pkg/engine"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Template string `arg:"" help:"Template path, optionally namespace:path"`

	EngineFlags `embed:""`
	DataFlags   `embed:""`

	Output   string        `short:"o" required:"" help:"File rewritten after every change" type:"path"`
	Debounce time.Duration `default:"200ms" help:"Quiet period before re-rendering"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return w.watch(ctx, g, root)
}

func (w *WatchCmd) watch(ctx context.Context, g *Global, root *CLI) error {
	eng, err := w.build(root, g)
	if err != nil {
		return err
	}
	data, err := w.load()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()
	for _, r := range eng.Roots() {
		if err := addDirsRecursive(watcher, r.Dir); err != nil {
			return err
		}
	}

	rerender := func() {
		if err := renderOnce(eng, w.Template, data, w.Output, g); err != nil {
			g.Logger.Error("render failed", logfields.Template(w.Template), logfields.Error(err))
		}
	}
	rerender()

	rebuild, trigger := debouncer(w.Debounce)
	g.Logger.Info("watching templates", logfields.Template(w.Template), slog.Int("roots", len(eng.Roots())))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(eng, watcher, ev) {
				continue
			}
			eng.Purge(ev.Name)
			g.Logger.Debug("template changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.Logger.Warn("watch error", logfields.Error(err))
		case <-rebuild:
			rerender()
		}
	}
}

// relevant reports whether ev touches a template file. New directories are
// added to the watcher on the way.
func (w *WatchCmd) relevant(eng *engine.Engine, watcher *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
			return false
		}
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return strings.HasSuffix(ev.Name, eng.Extension())
}

func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// debouncer coalesces bursts of triggers into one signal after quiet.
func debouncer(quiet time.Duration) (<-chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	out := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case out <- struct{}{}:
			default:
			}
		})
	}
	return out, trigger
}
