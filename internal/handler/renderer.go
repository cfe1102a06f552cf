package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
)

// Renderer manages template parsing and rendering with isolated template sets.
//
// The layout and every partial are parsed once into a base set. Each page
// under storefront/ is parsed into its own clone of the base, so pages can
// all define "content" without clashing. Partials double as HTMX fragments.
type Renderer struct {
	base      *template.Template
	templates map[string]*template.Template
}

// NewRenderer parses templates from fsys. It expects layout.html at the root,
// shared fragments in partials/ and pages in storefront/.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	baseTmpl, err := template.New("base").Funcs(TemplateFuncs()).ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	partials, err := fs.Glob(fsys, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}
	if len(partials) > 0 {
		if baseTmpl, err = baseTmpl.ParseFS(fsys, partials...); err != nil {
			return nil, fmt.Errorf("failed to parse partials: %w", err)
		}
	}

	pages, err := fs.Glob(fsys, "storefront/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob storefront templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		pageTmpl, err := baseTmpl.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		baseName := path.Base(page)
		templates["storefront/"+baseName[:len(baseName)-len(path.Ext(baseName))]] = pageTmpl
	}

	return &Renderer{
		base:      baseTmpl,
		templates: templates,
	}, nil
}

// Execute returns the template set of a page.
func (r *Renderer) Execute(name string) (*template.Template, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Render executes a page's layout into w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, err := r.Execute(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderHTTP renders a full page with status 200.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data any) {
	r.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a full page. Output is buffered so a template error
// still produces a clean 500.
func (r *Renderer) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		slog.Default().Error("render error", "template", name, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

// RenderFragment renders one named partial, for HTMX swaps.
func (r *Renderer) RenderFragment(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := r.base.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Default().Error("render error", "fragment", name, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
