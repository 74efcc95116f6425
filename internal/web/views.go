package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"opportunity-board/internal/auth"
	"opportunity-board/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"selected": func(a, b string) bool { return a == b },
	"upper":    strings.ToUpper,
}

var pages = compilePages(
	"home.html",
	"explore.html",
	"detail.html",
	"login.html",
	"signup.html",
	"dashboard.html",
	"manage.html",
	"form.html",
	"confirm_delete.html",
	"error.html",
)

func compilePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, n := range names {
		out[n] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+n))
	}
	return out
}

// viewData is passed to every page; Body holds the page-specific data.
type viewData struct {
	Title    string
	SiteName string
	User     *model.User
	Flash    *Flash
	Body     any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, body any) {
	s.renderFlash(w, r, status, page, title, body, s.popFlash(w, r))
}

// renderFlash renders page with an explicit flash instead of the pending one.
func (s *Server) renderFlash(w http.ResponseWriter, r *http.Request, status int, page, title string, body any, flash *Flash) {
	t, ok := pages[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	data := viewData{
		Title:    title,
		SiteName: s.SiteName,
		User:     auth.UserFromContext(r.Context()),
		Flash:    flash,
		Body:     body,
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		slog.Error("web: render failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.renderFlash(w, r, status, "error.html", http.StatusText(status), map[string]any{
		"Status":  status,
		"Message": msg,
	}, nil)
}
