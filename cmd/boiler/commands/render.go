package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/atomic"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/goliatone/go-boiler/internal/logfields"
	"github.com/goliatone/go-boiler/pkg/engine"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Template string `arg:"" help:"Template path, optionally namespace:path"`

	EngineFlags `embed:""`
	DataFlags   `embed:""`

	Ask     []string `short:"a" help:"Prompt for these values before rendering (repeatable)"`
	Output  string   `short:"o" help:"Write the result to this file instead of stdout" type:"path"`
	Metrics bool     `help:"Print render metrics in Prometheus text format to stderr"`

	prompter Prompter `kong:"-"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	eng, err := r.build(root, g)
	if err != nil {
		return err
	}
	data, err := r.load()
	if err != nil {
		return err
	}
	if len(r.Ask) > 0 {
		p := r.prompter
		if p == nil {
			p = surveyPrompter{}
		}
		if err := ask(p, r.Ask, data); err != nil {
			return err
		}
	}

	err = renderOnce(eng, r.Template, data, r.Output, g)
	if r.Metrics {
		if derr := dumpMetrics(g.Stderr, g.Registry); derr != nil {
			g.Logger.Warn("metrics dump failed", logfields.Error(derr))
		}
	}
	return err
}

// renderOnce renders path and writes it to output, or to stdout when output
// is empty. File writes are atomic so watchers never see a partial page.
func renderOnce(eng *engine.Engine, path string, data map[string]any, output string, g *Global) error {
	out, err := eng.Render(path, data)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = io.WriteString(g.Stdout, out)
		return err
	}
	if err := atomic.WriteFile(output, strings.NewReader(out)); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	g.Logger.Info("template written", logfields.Template(path), logfields.Path(output), slog.Int("bytes", len(out)))
	return nil
}

func dumpMetrics(w io.Writer, reg *prom.Registry) error {
	if reg == nil {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
