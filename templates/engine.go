// templates/engine.go
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Engine holds one compiled template per page. Every page is parsed into
// its own clone of the layout so each can define "title" and "content"
// without colliding with the others.
type Engine struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

// New compiles layout.html and every pages/*.html file in fsys. A page is
// named by its file name without the extension.
func New(fsys fs.FS, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := template.New("layout.html").Funcs(Funcs()).ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no pages found")
	}
	sort.Strings(files)

	e := &Engine{pages: make(map[string]*template.Template, len(files)), logger: logger}
	for _, f := range files {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := clone.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		e.pages[strings.TrimSuffix(path.Base(f), ".html")] = clone
	}
	logger.Debug("templates compiled", zap.Int("pages", len(e.pages)))
	return e, nil
}

// Has reports whether a page named name was compiled.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}

// Render executes page name inside the layout and writes it with status.
// Output is buffered so a failing template never sends a partial page.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := e.pages[name]
	if !ok {
		e.logger.Error("unknown page", zap.String("page", name))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		e.logger.Error("template render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
