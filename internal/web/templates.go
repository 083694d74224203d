package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/nav"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageData is the base every template receives. View models embed it.
type pageData struct {
	Title   string
	User    domain.User
	Authed  bool
	Links   []nav.Link
	Theme   domain.Theme
	Flash   string
	Banner  string
	BackURL string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[web] render %s: %v", name, err)
	}
}

// pageLink is one entry in a pagination strip.
type pageLink struct {
	Num     int
	URL     string
	Current bool
}
