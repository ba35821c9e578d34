package commands

import (
	"errors"
	"fmt"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
)

// ExistsCmd implements the 'exists' command.
type ExistsCmd struct {
	Template string `arg:"" help:"Template path, optionally namespace:path"`

	EngineFlags `embed:""`
}

func (x *ExistsCmd) Run(g *Global, root *CLI) error {
	eng, err := x.build(root, g)
	if err != nil {
		return err
	}
	file, err := eng.File(x.Template)
	if err != nil {
		if errors.Is(err, berrors.ErrLookup) {
			return fmt.Errorf("%s: not found", x.Template)
		}
		return err
	}
	_, err = fmt.Fprintln(g.Stdout, file)
	return err
}
