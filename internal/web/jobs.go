package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/listview"
)

const jobsPageSize = 10

type homeView struct {
	pageData
	Jobs []domain.JobPosting
}

func (s *Server) HomeHandler(w http.ResponseWriter, r *http.Request) {
	v := homeView{pageData: s.page(r, "Home")}
	jobs, _, err := s.gateway.ListJobPosts(r.Context(), 1, 6, api.JobFilters{})
	if err != nil {
		_, v.Banner = errBanner(err)
	}
	v.Jobs = jobs
	s.render(w, r, "home", v)
}

type jobsView struct {
	pageData
	Jobs      []domain.JobPosting
	Filters   api.JobFilters
	MinSalary string
	MaxSalary string
	JobTypes  []string
	Pages     []pageLink
}

func (s *Server) JobsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := api.JobFilters{
		Title:     q.Get("title"),
		JobType:   q.Get("job_type"),
		MinSalary: parseSalary(q.Get("min_salary")),
		MaxSalary: parseSalary(q.Get("max_salary")),
	}

	engine := listview.NewEngine(
		func(ctx context.Context, page, pageSize int, f api.JobFilters) ([]domain.JobPosting, api.ListMeta, error) {
			return s.gateway.ListJobPosts(ctx, page, pageSize, f)
		},
		jobsPageSize,
	)
	engine.SetFilters(filters)
	engine.SetPage(r.Context(), pageParam(q))

	st := engine.Snapshot()
	v := jobsView{
		pageData:  s.page(r, "Jobs"),
		Jobs:      st.Items,
		Filters:   st.Filters,
		MinSalary: q.Get("min_salary"),
		MaxSalary: q.Get("max_salary"),
		JobTypes:  domain.JobTypes,
		Pages:     pageLinks("/jobs", q, st.Page, st.TotalPages),
	}
	if st.Err != nil {
		_, v.Banner = errBanner(st.Err)
	}
	s.render(w, r, "jobs", v)
}

type jobDetailView struct {
	pageData
	Job          domain.JobPosting
	CanApplyLink bool
	CanManage    bool
	DeleteAction string
}

func (s *Server) JobDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}

	job, err := s.gateway.GetJobPost(r.Context(), id)
	if err != nil {
		if _, banner := errBanner(err); banner != "" {
			v := jobDetailView{pageData: s.page(r, "Job")}
			v.Banner = banner
			s.render(w, r, "jobdetail", v)
			return
		}
		s.NotFoundHandler(w, r)
		return
	}

	sess, active := s.sessions.Current()
	v := jobDetailView{
		pageData: s.page(r, job.Title),
		Job:      job,
	}
	// The apply link shows for anonymous visitors too; the gate redirects
	// them to login with the apply path preserved.
	v.CanApplyLink = !active || sess.User.Role == domain.RoleJobSeeker
	switch {
	case active && sess.User.Role == domain.RoleEmployer && sess.User.ID == job.UserID:
		v.CanManage = true
		v.DeleteAction = "/my-jobs/" + strconv.FormatInt(job.ID, 10) + "/delete"
	case active && sess.User.Role == domain.RoleAdmin:
		v.CanManage = true
		v.DeleteAction = "/admin/jobs/" + strconv.FormatInt(job.ID, 10) + "/delete"
	}
	s.render(w, r, "jobdetail", v)
}

func (s *Server) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	s.render(w, r, "notfound", s.page(r, "Not found"))
}

func parseSalary(raw string) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func pageParam(q url.Values) int {
	n, err := strconv.Atoi(q.Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// pageLinks builds the pagination strip, preserving the active filters in
// every link.
func pageLinks(base string, q url.Values, page, totalPages int) []pageLink {
	if totalPages < 2 {
		return nil
	}
	links := make([]pageLink, 0, totalPages)
	for n := 1; n <= totalPages; n++ {
		qq := url.Values{}
		for k, vs := range q {
			if k != "page" && k != "msg" {
				qq[k] = vs
			}
		}
		qq.Set("page", strconv.Itoa(n))
		links = append(links, pageLink{
			Num:     n,
			URL:     base + "?" + qq.Encode(),
			Current: n == page,
		})
	}
	return links
}
