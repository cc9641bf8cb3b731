// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/canteen-vote/models"
)

//go:embed templates/*.html
var files embed.FS

// Page names
const (
	Home       = "home"
	SignIn     = "sign_in"
	StaffLogin = "staff_login"
	Callback   = "callback"
	Setup      = "setup"
	Profile    = "profile"
	Dashboard  = "dashboard"
	Feedback   = "feedback"
	Loading    = "loading"
	Error      = "error"
)

// Page is what every template receives. Data holds the page specific values.
type Page struct {
	Title   string
	User    *models.User
	Flash   string
	Error   string
	Refresh *Refresh
	Data    any
}

// Refresh renders a meta refresh to URL after Delay
type Refresh struct {
	URL   string
	Delay time.Duration
}

// Seconds formats the delay for the meta tag and Refresh header
func (r Refresh) Seconds() string {
	return fmt.Sprintf("%g", r.Delay.Seconds())
}

// Header is the value of the Refresh response header
func (r Refresh) Header() string {
	return r.Seconds() + "; url=" + r.URL
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"ago":     humanize.Time,
	"comma":   func(n int) string { return humanize.Comma(int64(n)) },
	"ordinal": humanize.Ordinal,
	"inc":     func(i int) int { return i + 1 },
	"percent": percent,
	"monthOf": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("January 2006")
	},
	"deadline": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return humanize.Time(*t)
	},
}

func percent(part, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}

// New parses the embedded templates
func New() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(files, name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return r, nil
}

// Render writes page with the given status. The page is executed into a
// buffer first so a template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) {
	t, ok := r.pages[page]
	if !ok {
		slog.Error("unknown page template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data.Refresh != nil {
		w.Header().Set("Refresh", data.Refresh.Header())
	}
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write page", "page", page, "error", err)
	}
}

// LoadingPage is served by the route guard while the auth check runs
func (r *Renderer) LoadingPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Render(w, http.StatusOK, Loading, Page{Title: "Loading"})
	})
}
