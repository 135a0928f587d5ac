package ytsummarizer

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed web/index.html
var webFS embed.FS

type pageData struct {
	Model           string
	DefaultLanguage string
}

// pageRenderer implements echo.Renderer over the embedded templates
type pageRenderer struct {
	templates *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &pageRenderer{templates: tmpl}, nil
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
