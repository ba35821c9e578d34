package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-boiler/pkg/engine"
	"github.com/goliatone/go-boiler/pkg/helpers"
	"github.com/goliatone/go-boiler/pkg/metrics"
)

// Global carries state shared by every command.
type Global struct {
	Logger   *slog.Logger
	Stdout   io.Writer
	Stderr   io.Writer
	Registry *prom.Registry
}

// NewGlobal returns the shared state with a fresh metrics registry.
func NewGlobal(stdout, stderr io.Writer) *Global {
	return &Global{Logger: slog.Default(), Stdout: stdout, Stderr: stderr, Registry: prom.NewRegistry()}
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Engine configuration file (YAML or JSON)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" help:"Render a template to stdout or a file"`
	Exists ExistsCmd `cmd:"" help:"Report the file a template path resolves to"`
	Watch  WatchCmd  `cmd:"" help:"Re-render a template whenever its directories change"`
	Init   InitCmd   `cmd:"" help:"Write the starter templates into a directory"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// EngineFlags select the template directories and escaping mode.
type EngineFlags struct {
	Dir       []string          `short:"d" help:"Template directory (repeatable)"`
	Namespace map[string]string `short:"n" help:"Namespaced template directory as name=dir (repeatable)"`
	Extension string            `short:"e" help:"Template file extension"`
	Unescaped bool              `short:"u" help:"Bind values without escaping"`
	NoHelpers bool              `name:"no-helpers" help:"Skip the markdown, truncate, join and fallback helpers"`
}

// build assembles an engine from the config file, then the flags.
func (f EngineFlags) build(root *CLI, g *Global, extra ...engine.Option) (*engine.Engine, error) {
	var opts []engine.Option
	if root != nil && root.Config != "" {
		cfg, err := engine.LoadConfig(root.Config)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithConfig(cfg))
	}
	if len(f.Dir) > 0 {
		opts = append(opts, engine.WithDirs(f.Dir...))
	}
	for ns, dir := range f.Namespace {
		opts = append(opts, engine.WithNamespace(ns, dir))
	}
	if f.Extension != "" {
		opts = append(opts, engine.WithExtension(f.Extension))
	}
	if f.Unescaped {
		opts = append(opts, engine.WithAutoescape(false))
	}
	if !f.NoHelpers {
		opts = append(opts, helpers.Options()...)
	}
	opts = append(opts, engine.WithLogger(g.Logger))
	if g.Registry != nil {
		opts = append(opts, engine.WithMetrics(metrics.NewPrometheusRecorder(g.Registry)))
	}
	opts = append(opts, extra...)
	return engine.New(opts...)
}

// DataFlags collect the values a template is rendered with.
type DataFlags struct {
	Data string            `short:"D" help:"YAML or JSON file with template values" type:"path"`
	Set  map[string]string `short:"s" help:"Template value as key=value (repeatable, overrides --data)"`
}

func (f DataFlags) load() (map[string]any, error) {
	data := map[string]any{}
	if f.Data != "" {
		raw, err := os.ReadFile(f.Data)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		parsed, err := parseData(raw)
		if err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", f.Data, err)
		}
		data = parsed
	}
	for k, v := range f.Set {
		data[k] = v
	}
	return data, nil
}

// parseData decodes a YAML or JSON mapping. JSON is valid YAML.
func parseData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if strings.TrimSpace(string(raw)) == "" {
		return data, nil
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
