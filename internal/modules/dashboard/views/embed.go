package views

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var viewsFS embed.FS

// StaticFS serves the dashboard script and stylesheet.
func StaticFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "static")
	if err != nil {
		// static is embedded at build time; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
