package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const pageTemplate = "page.tmpl"

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// loadTemplates parses page.tmpl from dir. An empty dir, or one without
// page.tmpl, uses the embedded copy.
func loadTemplates(dir string) (*template.Template, string, error) {
	if dir != "" {
		path := filepath.Join(dir, pageTemplate)
		if _, err := os.Stat(path); err == nil {
			tmpl, err := template.New("page").Funcs(templateFuncs).ParseFiles(path)
			if err != nil {
				return nil, "", fmt.Errorf("parse page template: %w", err)
			}
			return tmpl, path, nil
		}
	}
	tmpl, err := template.New("page").Funcs(templateFuncs).ParseFS(embeddedTemplates, "templates/"+pageTemplate)
	if err != nil {
		return nil, "", fmt.Errorf("parse embedded page template: %w", err)
	}
	return tmpl, "embedded", nil
}

// templateSet holds the current page template. The dev watcher swaps it while
// requests render from it.
type templateSet struct {
	mu     sync.RWMutex
	dir    string
	tmpl   *template.Template
	source string
}

func newTemplateSet(dir string) (*templateSet, error) {
	ts := &templateSet{dir: dir}
	if err := ts.reload(); err != nil {
		return nil, err
	}
	return ts, nil
}

// reload re-parses the templates. On failure the previous set stays active.
func (ts *templateSet) reload() error {
	tmpl, source, err := loadTemplates(ts.dir)
	if err != nil {
		return err
	}
	ts.mu.Lock()
	ts.tmpl = tmpl
	ts.source = source
	ts.mu.Unlock()
	return nil
}

func (ts *templateSet) execute(w io.Writer, data any) error {
	ts.mu.RLock()
	tmpl := ts.tmpl
	ts.mu.RUnlock()
	return tmpl.ExecuteTemplate(w, "page", data)
}

func (ts *templateSet) Source() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.source
}
