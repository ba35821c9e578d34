package boiler

import (
	"embed"
	"io/fs"
)

//go:embed starter
var embeddedStarter embed.FS

// StarterTemplates exposes a minimal layout, page and partial set used by
// `boiler init` to seed a new template directory.
//
//	err := os.CopyFS(dir, boiler.StarterTemplates())
func StarterTemplates() fs.FS {
	sub, err := fs.Sub(embeddedStarter, "starter")
	if err != nil {
		return embeddedStarter
	}
	return sub
}
