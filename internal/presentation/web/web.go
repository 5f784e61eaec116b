// Package web holds the console's embedded HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates static
var files embed.FS

const layoutName = "layout"

// Renderer implements gin's HTMLRender. Each page is parsed together with the
// layout and partials so pages can define their own "content" block.
//
// A name of the form "page#block" executes a single block of the page without
// the layout, which is how polled fragments are served.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page under templates/.
func NewRenderer(funcs template.FuncMap) (*Renderer, error) {
	base, err := template.New(layoutName).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == layoutName {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(files, file); err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	page, block, fragment := strings.Cut(name, "#")
	t, ok := r.pages[page]
	if !ok {
		panic(fmt.Sprintf("web: unknown page %q", page))
	}
	if !fragment {
		block = layoutName
	}
	return render.HTML{Template: t, Name: block, Data: data}
}

// Has reports whether a page exists.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Static serves the embedded stylesheet and script.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
