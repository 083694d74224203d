package web

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
)

type myJobsView struct {
	pageData
	Jobs []domain.JobPosting
}

func (s *Server) MyJobsHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Current()
	v := myJobsView{pageData: s.page(r, "My Jobs")}

	jobs, _, err := s.gateway.ListJobPostsByUser(r.Context(), sess.User.ID, 1, 100)
	if err != nil {
		_, v.Banner = errBanner(err)
	}
	v.Jobs = jobs
	s.render(w, r, "myjobs", v)
}

type jobFormView struct {
	pageData
	Job          domain.JobPosting
	Requirements string
	JobTypes     []string
	Action       string
	FormError    string
}

func (s *Server) JobFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "jobform", jobFormView{
		pageData: s.page(r, "Post a Job"),
		Job:      domain.JobPosting{JobType: domain.JobTypes[0]},
		JobTypes: domain.JobTypes,
		Action:   "/my-jobs/new",
	})
}

func (s *Server) JobEditFormHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}
	job, err := s.gateway.GetJobPost(r.Context(), id)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}
	sess, _ := s.sessions.Current()
	if job.UserID != sess.User.ID {
		w.WriteHeader(http.StatusForbidden)
		s.render(w, r, "denied", s.page(r, "Access denied"))
		return
	}
	s.render(w, r, "jobform", jobFormView{
		pageData:     s.page(r, "Edit Job"),
		Job:          job,
		Requirements: domain.JoinRequirements(job.Requirements),
		JobTypes:     domain.JobTypes,
		Action:       "/my-jobs/" + strconv.FormatInt(id, 10) + "/edit",
	})
}

// parseJobForm validates the posted job form without touching the network.
// The returned message is empty when the input is valid.
func parseJobForm(r *http.Request) (api.JobPostInput, string) {
	in := api.JobPostInput{
		Title:        strings.TrimSpace(r.PostForm.Get("title")),
		Company:      strings.TrimSpace(r.PostForm.Get("company")),
		Location:     strings.TrimSpace(r.PostForm.Get("location")),
		JobType:      r.PostForm.Get("job_type"),
		Description:  strings.TrimSpace(r.PostForm.Get("description")),
		Requirements: domain.SplitRequirements(r.PostForm.Get("requirements")),
	}
	in.SalaryMin, _ = strconv.ParseInt(r.PostForm.Get("salary_min"), 10, 64)
	in.SalaryMax, _ = strconv.ParseInt(r.PostForm.Get("salary_max"), 10, 64)

	if in.Title == "" || in.Company == "" || in.Location == "" || in.Description == "" {
		return in, "Please fill in all required fields"
	}
	if len(in.Requirements) == 0 {
		return in, "Please list at least one requirement"
	}
	validType := false
	for _, t := range domain.JobTypes {
		if in.JobType == t {
			validType = true
			break
		}
	}
	if !validType {
		return in, "Please choose a valid job type"
	}
	if err := domain.ValidateSalaryRange(in.SalaryMin, in.SalaryMax); err != nil {
		return in, "Minimum salary cannot be greater than maximum salary"
	}
	return in, ""
}

func (s *Server) jobFormError(w http.ResponseWriter, r *http.Request, action string, in api.JobPostInput, id int64, msg, banner string) {
	v := jobFormView{
		pageData: s.page(r, "Post a Job"),
		Job: domain.JobPosting{
			ID: id, Title: in.Title, Company: in.Company, Location: in.Location,
			JobType: in.JobType, Description: in.Description,
			SalaryMin: in.SalaryMin, SalaryMax: in.SalaryMax,
		},
		Requirements: r.PostForm.Get("requirements"),
		JobTypes:     domain.JobTypes,
		Action:       action,
		FormError:    msg,
	}
	v.Banner = banner
	w.WriteHeader(http.StatusBadRequest)
	s.render(w, r, "jobform", v)
}

func (s *Server) JobCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	in, msg := parseJobForm(r)
	if msg != "" {
		s.jobFormError(w, r, "/my-jobs/new", in, 0, msg, "")
		return
	}
	if _, err := s.gateway.CreateJobPost(r.Context(), in); err != nil {
		inline, banner := errBanner(err)
		s.jobFormError(w, r, "/my-jobs/new", in, 0, inline, banner)
		return
	}
	redirectMsg(w, r, "/my-jobs", "Job posted")
}

func (s *Server) JobUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	action := "/my-jobs/" + strconv.FormatInt(id, 10) + "/edit"
	in, msg := parseJobForm(r)
	if msg != "" {
		s.jobFormError(w, r, action, in, id, msg, "")
		return
	}
	if _, err := s.gateway.UpdateJobPost(r.Context(), id, in); err != nil {
		inline, banner := errBanner(err)
		s.jobFormError(w, r, action, in, id, inline, banner)
		return
	}
	redirectMsg(w, r, "/my-jobs", "Job updated")
}

func (s *Server) JobDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}
	if err := s.gateway.DeleteJobPost(r.Context(), id); err != nil {
		_, banner := errBanner(err)
		redirectMsg(w, r, "/my-jobs", banner)
		return
	}
	redirectMsg(w, r, "/my-jobs", "Job deleted")
}

type applicantRow struct {
	ID            int64
	ApplicantName string
	CVFilename    string
	Status        domain.ApplicationStatus
	CreatedAt     time.Time
}

type jobApplications struct {
	Job  domain.JobPosting
	Rows []applicantRow
}

type employerApplicationsView struct {
	pageData
	Groups []jobApplications
}

// EmployerApplicationsHandler renders every application for every job the
// employer owns. Per-job application lists are fetched in parallel, then
// applicant names in a second parallel pass; both merges are keyed, so
// completion order never matters.
func (s *Server) EmployerApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Current()
	v := employerApplicationsView{pageData: s.page(r, "Applications Received")}

	jobs, _, err := s.gateway.ListJobPostsByUser(r.Context(), sess.User.ID, 1, 100)
	if err != nil {
		_, v.Banner = errBanner(err)
		s.render(w, r, "applications", v)
		return
	}

	appsByJob := make(map[int64][]domain.Application)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(jobID int64) {
			defer wg.Done()
			apps, _, err := s.gateway.ListApplicationsByJob(r.Context(), jobID, 1, 0)
			if err != nil {
				return
			}
			mu.Lock()
			appsByJob[jobID] = apps
			mu.Unlock()
		}(job.ID)
	}
	wg.Wait()

	names := s.resolveApplicantNames(r, appsByJob)

	for _, job := range jobs {
		group := jobApplications{Job: job}
		for _, app := range appsByJob[job.ID] {
			group.Rows = append(group.Rows, applicantRow{
				ID:            app.ID,
				ApplicantName: names[app.UserID],
				CVFilename:    app.CVFilename,
				Status:        app.Status,
				CreatedAt:     app.CreatedAt,
			})
		}
		v.Groups = append(v.Groups, group)
	}
	s.render(w, r, "applications", v)
}

// resolveApplicantNames looks up each distinct applicant in parallel. A
// failed lookup keeps the "-" placeholder instead of failing the page.
func (s *Server) resolveApplicantNames(r *http.Request, appsByJob map[int64][]domain.Application) map[int64]string {
	names := make(map[int64]string)
	for _, apps := range appsByJob {
		for _, app := range apps {
			names[app.UserID] = "-"
		}
	}

	ids := make([]int64, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			u, err := s.gateway.GetUser(r.Context(), userID)
			if err != nil {
				return
			}
			mu.Lock()
			names[userID] = u.Name
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return names
}

// ApplicationStatusHandler is the employer's accept/reject action. Only
// Pending applications transition; the page re-fetches after the update.
func (s *Server) ApplicationStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	status := domain.ApplicationStatus(r.PostForm.Get("status"))
	if status != domain.StatusAccepted && status != domain.StatusRejected {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	if _, err := s.gateway.UpdateApplicationStatus(r.Context(), id, status); err != nil {
		_, banner := errBanner(err)
		redirectMsg(w, r, "/applications", banner)
		return
	}
	redirectMsg(w, r, "/applications", "Application "+strings.ToLower(string(status)))
}
