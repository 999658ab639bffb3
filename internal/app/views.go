package app

import (
	"embed"
	"html/template"
)

//go:embed views/*.html
var viewsFS embed.FS

func parseViews() (*template.Template, error) {
	return template.ParseFS(viewsFS, "views/*.html")
}
