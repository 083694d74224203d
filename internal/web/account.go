package web

import (
	"net/http"
	"strings"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
)

type accountView struct {
	pageData
	Themes        []domain.Theme
	DetailsError  string
	PasswordError string
}

func (s *Server) accountView(r *http.Request) accountView {
	return accountView{
		pageData: s.page(r, "Account Settings"),
		Themes:   []domain.Theme{domain.ThemeSystem, domain.ThemeLight, domain.ThemeDark},
	}
}

func (s *Server) AccountHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "account", s.accountView(r))
}

// verifyCurrentPassword confirms the password typed into a settings form
// before any change is applied.
func (s *Server) verifyCurrentPassword(r *http.Request) (bool, error) {
	sess, _ := s.sessions.Current()
	return s.gateway.VerifyPassword(r.Context(), sess.User.Email, r.PostForm.Get("current_password"))
}

func (s *Server) AccountDetailsHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	v := s.accountView(r)

	ok, err := s.verifyCurrentPassword(r)
	if err != nil {
		v.DetailsError, v.Banner = errBanner(err)
	} else if !ok {
		v.DetailsError = "Current password is incorrect"
	}
	if v.DetailsError != "" || v.Banner != "" {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "account", v)
		return
	}

	sess, _ := s.sessions.Current()
	updated, err := s.gateway.UpdateUser(r.Context(), sess.User.ID, api.UserUpdateInput{
		Name:  strings.TrimSpace(r.PostForm.Get("name")),
		Email: strings.TrimSpace(r.PostForm.Get("email")),
	})
	if err != nil {
		v.DetailsError, v.Banner = errBanner(err)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "account", v)
		return
	}

	s.sessions.UpdateAuthUser(updated)
	redirectMsg(w, r, "/account", "Account details updated")
}

func (s *Server) AccountPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	v := s.accountView(r)

	newPassword := r.PostForm.Get("new_password")
	switch {
	case len(newPassword) < 6:
		v.PasswordError = "Password must be at least 6 characters"
	case newPassword != r.PostForm.Get("confirm"):
		v.PasswordError = "Passwords do not match"
	}
	if v.PasswordError != "" {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "account", v)
		return
	}

	ok, err := s.verifyCurrentPassword(r)
	if err != nil {
		v.PasswordError, v.Banner = errBanner(err)
	} else if !ok {
		v.PasswordError = "Current password is incorrect"
	}
	if v.PasswordError != "" || v.Banner != "" {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "account", v)
		return
	}

	sess, _ := s.sessions.Current()
	if _, err := s.gateway.UpdateUser(r.Context(), sess.User.ID, api.UserUpdateInput{Password: newPassword}); err != nil {
		v.PasswordError, v.Banner = errBanner(err)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "account", v)
		return
	}

	// The old token may be bound to the old credential; sign out rather than
	// guess.
	s.sessions.Logout()
	redirectMsg(w, r, "/login", "Password changed. Please login again.")
}

func (s *Server) AccountThemeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	theme := domain.Theme(r.PostForm.Get("theme"))
	if err := s.local.SetTheme(theme); err != nil {
		redirectMsg(w, r, "/account", "Invalid theme")
		return
	}
	redirectMsg(w, r, "/account", "Theme updated")
}
