package server

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/index.html
var embeddedFiles embed.FS

// staticHandler serves the embedded viewer page.
func staticHandler() http.Handler {
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
