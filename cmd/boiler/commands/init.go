package commands

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	boiler "github.com/goliatone/go-boiler"
	"github.com/goliatone/go-boiler/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `arg:"" optional:"" default:"templates" help:"Directory to seed" type:"path"`
	Force bool   `help:"Overwrite existing template files"`
}

func (i *InitCmd) Run(g *Global) error {
	written, err := seed(i.Dir, boiler.StarterTemplates(), i.Force, g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "wrote %d templates to %s\n", written, i.Dir)
	return err
}

// seed copies every file of src under dir. Existing files are kept unless
// force is set.
func seed(dir string, src fs.FS, force bool, g *Global) (int, error) {
	written := 0
	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if _, err := os.Stat(target); err == nil && !force {
			g.Logger.Info("skipping existing template", logfields.Path(target))
			return nil
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		g.Logger.Debug("template written", logfields.Path(target))
		written++
		return nil
	})
	return written, err
}
