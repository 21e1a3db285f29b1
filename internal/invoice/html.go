package invoice

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed static/*.html
var staticFS embed.FS

var templates = template.Must(template.ParseFS(staticFS, "static/*.html"))

type indexPage struct {
	Fields []string
}

type fieldRow struct {
	Name  string
	Value string
}

type resultsPage struct {
	Error   string
	Invoice *Invoice
	Rows    []fieldRow
	Filled  int
}

// renderTemplate renders into a buffer first so a template error never
// leaves a half-written page behind
func renderTemplate(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Error rendering template", "template", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
