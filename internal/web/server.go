// Package web serves the browser UI: every page is a handler over the
// gateway, the session store, and the local state. The server binds to
// loopback and renders server-side; no script talks to the backend directly.
package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/eligibility"
	"github.com/bdcmjobs/jobdesk/internal/localstore"
	"github.com/bdcmjobs/jobdesk/internal/nav"
	"github.com/bdcmjobs/jobdesk/internal/session"
)

type Server struct {
	gateway  *api.Client
	sessions *session.Store
	local    *localstore.Store
	gate     *eligibility.Gate
}

func NewServer(gateway *api.Client, sessions *session.Store, local *localstore.Store) *Server {
	return &Server{
		gateway:  gateway,
		sessions: sessions,
		local:    local,
		gate:     eligibility.New(gateway),
	}
}

// Routes wires every page. Role checks live on the routes themselves, not
// just in the navigation links.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.Recoverer)

	r.Handle("/static/*", StaticHandler())
	r.Get("/", s.HomeHandler)
	r.Get("/jobs", s.JobsHandler)
	r.Get("/jobs/{id}", s.JobDetailHandler)
	r.Get("/login", s.LoginFormHandler)
	r.Post("/login", s.LoginHandler)
	r.Get("/register", s.RegisterFormHandler)
	r.Post("/register", s.RegisterHandler)
	r.Post("/logout", s.LogoutHandler)

	// The apply view does its own gating: anonymous visitors and non-seekers
	// get the gate's contextual redirects, not the generic ones.
	r.Get("/jobs/{id}/apply", s.ApplyFormHandler)
	r.Post("/jobs/{id}/apply", s.ApplyHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Get("/account", s.AccountHandler)
		r.Post("/account/details", s.AccountDetailsHandler)
		r.Post("/account/password", s.AccountPasswordHandler)
		r.Post("/account/theme", s.AccountThemeHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.RequireRole(domain.RoleJobSeeker))
		r.Get("/my-applications", s.MyApplicationsHandler)
		r.Get("/profile", s.ProfileHandler)
		r.Post("/profile", s.ProfileSaveHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.RequireRole(domain.RoleEmployer))
		r.Get("/my-jobs", s.MyJobsHandler)
		r.Get("/my-jobs/new", s.JobFormHandler)
		r.Post("/my-jobs/new", s.JobCreateHandler)
		r.Get("/my-jobs/{id}/edit", s.JobEditFormHandler)
		r.Post("/my-jobs/{id}/edit", s.JobUpdateHandler)
		r.Post("/my-jobs/{id}/delete", s.JobDeleteHandler)
		r.Get("/applications", s.EmployerApplicationsHandler)
		r.Post("/applications/{id}/status", s.ApplicationStatusHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.RequireRole(domain.RoleAdmin))
		r.Get("/admin", s.AdminHandler)
		r.Post("/admin/users", s.AdminCreateUserHandler)
		r.Post("/admin/users/{id}/delete", s.AdminDeleteUserHandler)
		r.Post("/admin/jobs/{id}/delete", s.AdminDeleteJobHandler)
	})

	r.NotFound(s.NotFoundHandler)
	return r
}

// Recoverer is the catch-all boundary: a panic while rendering one view
// becomes a fallback page instead of a dropped connection.
func (s *Server) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[web] panic on %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				w.WriteHeader(http.StatusInternalServerError)
				s.render(w, r, "fallback", s.page(r, "Something went wrong"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// page builds the fields every template shares.
func (s *Server) page(r *http.Request, title string) pageData {
	sess, active := s.sessions.Current()
	return pageData{
		Title:   title,
		User:    sess.User,
		Authed:  active,
		Links:   nav.LinksFor(sess.User, active),
		Theme:   s.local.Theme(),
		Flash:   r.URL.Query().Get("msg"),
		BackURL: r.Referer(),
	}
}

// redirectMsg sends the browser to path with a flash message attached.
func redirectMsg(w http.ResponseWriter, r *http.Request, path, msg string) {
	if msg != "" {
		sep := "?"
		if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		path += sep + "msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// errBanner classifies an error for rendering. Validation errors come back
// inline; everything else is a dismissable banner with a retry.
func errBanner(err error) (inline string, banner string) {
	if err == nil {
		return "", ""
	}
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, ""
	}
	var nfe *api.NotFoundError
	if errors.As(err, &nfe) {
		return nfe.Message, ""
	}
	return "", err.Error()
}
