package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
)

type loginView struct {
	pageData
	Email     string
	ReturnTo  string
	FormError string
}

func (s *Server) LoginFormHandler(w http.ResponseWriter, r *http.Request) {
	if _, active := s.sessions.Current(); active {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "login", loginView{
		pageData: s.page(r, "Login"),
		ReturnTo: r.URL.Query().Get("returnTo"),
	})
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	returnTo := r.PostForm.Get("returnTo")

	_, err := s.sessions.Login(r.Context(), email, password)
	if err != nil {
		v := loginView{
			pageData: s.page(r, "Login"),
			Email:    email,
			ReturnTo: returnTo,
		}
		var ae *api.AuthError
		switch {
		case errors.As(err, &ae):
			v.FormError = "Incorrect email or password"
		default:
			v.FormError, v.Banner = errBanner(err)
		}
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login", v)
		return
	}

	dest := "/"
	if returnTo != "" && strings.HasPrefix(returnTo, "/") {
		dest = returnTo
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

type registerView struct {
	pageData
	Name      string
	Email     string
	Role      string
	FormError string
}

func (s *Server) RegisterFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register", registerView{
		pageData: s.page(r, "Register"),
		Role:     string(domain.RoleJobSeeker),
	})
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	v := registerView{
		pageData: s.page(r, "Register"),
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Role:     r.PostForm.Get("role"),
	}
	password := r.PostForm.Get("password")

	// Client-side checks mirror what the backend enforces, so most mistakes
	// never cost a round-trip.
	switch {
	case len(password) < 6:
		v.FormError = "Password must be at least 6 characters"
	case password != r.PostForm.Get("confirm"):
		v.FormError = "Passwords do not match"
	case v.Role != string(domain.RoleJobSeeker) && v.Role != string(domain.RoleEmployer):
		v.FormError = "Please choose a valid role"
	}
	if v.FormError != "" {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "register", v)
		return
	}

	_, err := s.gateway.Register(r.Context(), api.RegisterInput{
		Name:     v.Name,
		Email:    v.Email,
		Password: password,
		Role:     domain.Role(v.Role),
	})
	if err != nil {
		v.FormError, v.Banner = errBanner(err)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "register", v)
		return
	}

	redirectMsg(w, r, "/login", "Registration successful. Please login.")
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
