package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/listview"
)

const adminJobsPageSize = 10

type adminView struct {
	pageData
	Users       []domain.User
	Query       string
	Jobs        []domain.JobPosting
	Pages       []pageLink
	CreateError string
}

func (s *Server) AdminHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := adminView{
		pageData: s.page(r, "Admin Panel"),
		Query:    q.Get("q"),
	}

	users, _, err := s.gateway.ListUsers(r.Context())
	if err != nil {
		_, v.Banner = errBanner(err)
	}
	// Admin accounts are not managed from this table.
	var visible []domain.User
	for _, u := range users {
		if u.Role != domain.RoleAdmin {
			visible = append(visible, u)
		}
	}
	v.Users = listview.Refine(visible, v.Query, func(u domain.User) string {
		return u.Name + " " + u.Email
	})

	engine := listview.NewEngine(
		func(ctx context.Context, page, pageSize int, f api.JobFilters) ([]domain.JobPosting, api.ListMeta, error) {
			return s.gateway.ListJobPosts(ctx, page, pageSize, f)
		},
		adminJobsPageSize,
	)
	engine.SetPage(r.Context(), pageParam(q))
	st := engine.Snapshot()
	if st.Err != nil && v.Banner == "" {
		_, v.Banner = errBanner(st.Err)
	}
	v.Jobs = st.Items
	v.Pages = pageLinks("/admin", q, st.Page, st.TotalPages)

	s.render(w, r, "admin", v)
}

func (s *Server) AdminCreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	role := domain.Role(r.PostForm.Get("role"))
	if role != domain.RoleJobSeeker && role != domain.RoleEmployer {
		redirectMsg(w, r, "/admin", "Please choose a valid role")
		return
	}

	_, err := s.gateway.CreateUser(r.Context(), api.UserCreateInput{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     role,
	})
	if err != nil {
		inline, banner := errBanner(err)
		if inline == "" {
			inline = banner
		}
		v := adminView{pageData: s.page(r, "Admin Panel"), CreateError: inline}
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "admin", v)
		return
	}
	redirectMsg(w, r, "/admin", "User created")
}

func (s *Server) AdminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}

	sess, _ := s.sessions.Current()
	if id == sess.User.ID {
		redirectMsg(w, r, "/admin", "You cannot delete your own account")
		return
	}

	if err := s.gateway.DeleteUser(r.Context(), id); err != nil {
		_, banner := errBanner(err)
		redirectMsg(w, r, "/admin", banner)
		return
	}
	redirectMsg(w, r, "/admin", "User deleted")
}

func (s *Server) AdminDeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}
	if err := s.gateway.DeleteJobPost(r.Context(), id); err != nil {
		_, banner := errBanner(err)
		redirectMsg(w, r, "/admin", banner)
		return
	}
	redirectMsg(w, r, "/admin", "Job post deleted")
}
