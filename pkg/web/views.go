// Package web provides infrastructure for serving server-rendered pages with
// Go templates and embedded static assets.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef names a view's template file and page title.
type ViewDef struct {
	Template string
	Title    string
}

// ViewData contains the data passed to page templates during rendering.
// BasePath enables portable URL generation in templates via {{ .BasePath }}.
// Flash carries a one-shot warning shown above the page content.
type ViewData struct {
	Title    string
	BasePath string
	Version  string
	Flash    string
	Data     any
}

// TemplateSet holds pre-parsed templates and the values every view shares.
// Templates are parsed once at startup, avoiding per-request overhead.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
	version  string
}

// NewTemplateSet creates a TemplateSet by parsing layout templates and cloning
// them for each view. Parsing at startup fails fast on template errors.
func NewTemplateSet(fsys fs.FS, layoutGlob, viewSubdir, basePath, version string, views []ViewDef) (*TemplateSet, error) {
	layouts, err := template.ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, err
	}

	viewSub, err := fs.Sub(fsys, viewSubdir)
	if err != nil {
		return nil, err
	}

	viewTemplates := make(map[string]*template.Template, len(views))
	for _, p := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", p.Template, err)
		}
		_, err = t.ParseFS(viewSub, p.Template)
		if err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", p.Template, err)
		}
		viewTemplates[p.Template] = t
	}

	return &TemplateSet{
		views:    viewTemplates,
		basePath: basePath,
		version:  version,
	}, nil
}

// BasePath returns the URL prefix the site is mounted under.
func (ts *TemplateSet) BasePath() string {
	return ts.basePath
}

// Data builds the ViewData for view carrying payload.
func (ts *TemplateSet) Data(view ViewDef, payload any) ViewData {
	return ViewData{
		Title:    view.Title,
		BasePath: ts.basePath,
		Version:  ts.version,
		Data:     payload,
	}
}

// Render executes the named layout template with the given view data and
// writes it with status. Nothing is written when execution fails.
func (ts *TemplateSet) Render(w http.ResponseWriter, status int, layoutName, viewPath string, data ViewData) error {
	t, ok := ts.views[viewPath]
	if !ok {
		return fmt.Errorf("template not found: %s", viewPath)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutName, data); err != nil {
		return fmt.Errorf("execute %s: %w", viewPath, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
