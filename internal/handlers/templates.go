package handlers

import (
	"embed"
	"html/template"
)

// templatesFS embeds the server-rendered board page
//
//go:embed templates/*.html
var templatesFS embed.FS

// LoadTemplates parses the embedded page templates for gin's HTML renderer
func LoadTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templatesFS, "templates/*.html")
}
