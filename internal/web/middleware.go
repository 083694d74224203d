package web

import (
	"net/http"
	"net/url"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// RequireAuth redirects anonymous visitors to login, preserving the path
// they asked for so login can return there.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, active := s.sessions.Current(); !active {
			redirectToLogin(w, r, "Please login to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route to one role. Hidden navigation links are not the
// access check; direct navigation lands here.
func (s *Server) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, active := s.sessions.Current()
			if !active {
				redirectToLogin(w, r, "Please login to continue")
				return
			}
			if sess.User.Role != role {
				w.WriteHeader(http.StatusForbidden)
				s.render(w, r, "denied", s.page(r, "Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, msg string) {
	q := url.Values{}
	q.Set("returnTo", r.URL.RequestURI())
	q.Set("msg", msg)
	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
}
