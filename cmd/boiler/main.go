package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-boiler/cmd/boiler/commands"
)

var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("boiler"),
		kong.Description("Render boiler templates from the command line."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := ctx.Run(commands.NewGlobal(os.Stdout, os.Stderr))
	ctx.FatalIfErrorf(err)
}
