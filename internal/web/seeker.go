package web

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
)

type applicationRow struct {
	ID         int64
	JobPostID  int64
	JobTitle   string
	Status     domain.ApplicationStatus
	CVFilename string
	CreatedAt  time.Time
}

type myApplicationsView struct {
	pageData
	Rows []applicationRow
}

func (s *Server) MyApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Current()
	v := myApplicationsView{pageData: s.page(r, "My Applications")}

	apps, _, err := s.gateway.ListApplicationsByUser(r.Context(), sess.User.ID, 1, 0)
	if err != nil {
		_, v.Banner = errBanner(err)
		s.render(w, r, "myapplications", v)
		return
	}

	// Job titles are fetched in parallel and merged by job id; a failed
	// lookup leaves a placeholder rather than failing the page.
	titles := make(map[int64]string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, app := range apps {
		mu.Lock()
		_, seen := titles[app.JobPostID]
		if !seen {
			titles[app.JobPostID] = "-"
		}
		mu.Unlock()
		if seen {
			continue
		}
		wg.Add(1)
		go func(jobID int64) {
			defer wg.Done()
			job, err := s.gateway.GetJobPost(r.Context(), jobID)
			if err != nil {
				return
			}
			mu.Lock()
			titles[jobID] = job.Title
			mu.Unlock()
		}(app.JobPostID)
	}
	wg.Wait()

	for _, app := range apps {
		v.Rows = append(v.Rows, applicationRow{
			ID:         app.ID,
			JobPostID:  app.JobPostID,
			JobTitle:   titles[app.JobPostID],
			Status:     app.Status,
			CVFilename: app.CVFilename,
			CreatedAt:  app.CreatedAt,
		})
	}
	s.render(w, r, "myapplications", v)
}

type profileView struct {
	pageData
	Profile    domain.Profile
	Skills     string
	ReturnPath string
	FormError  string
}

func (s *Server) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Current()
	v := profileView{
		pageData:   s.page(r, "My Profile"),
		ReturnPath: r.URL.Query().Get("returnPath"),
	}

	profile, err := s.gateway.GetProfileByUser(r.Context(), sess.User.ID)
	if err == nil {
		v.Profile = profile
		v.Skills = strings.Join(profile.Skills, ", ")
	}
	// A missing profile renders the blank create form; other errors too,
	// since the form is still usable.
	s.render(w, r, "profile", v)
}

func (s *Server) ProfileSaveHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	sess, _ := s.sessions.Current()

	age, _ := strconv.Atoi(r.PostForm.Get("age"))
	in := api.ProfileInput{
		UserID:      sess.User.ID,
		FullName:    strings.TrimSpace(r.PostForm.Get("full_name")),
		Phone:       strings.TrimSpace(r.PostForm.Get("phone")),
		Age:         age,
		Gender:      r.PostForm.Get("gender"),
		Description: r.PostForm.Get("description"),
		Skills:      domain.SplitSkills(r.PostForm.Get("skills")),
		Education:   r.PostForm.Get("education"),
		Experience:  r.PostForm.Get("experience"),
	}
	returnPath := r.PostForm.Get("returnPath")

	// Existing profile decides create vs update.
	var err error
	if existing, getErr := s.gateway.GetProfileByUser(r.Context(), sess.User.ID); getErr == nil && existing.ID != 0 {
		_, err = s.gateway.UpdateProfile(r.Context(), existing.ID, in)
	} else {
		_, err = s.gateway.CreateProfile(r.Context(), in)
	}
	if err != nil {
		v := profileView{
			pageData:   s.page(r, "My Profile"),
			Skills:     r.PostForm.Get("skills"),
			ReturnPath: returnPath,
		}
		v.Profile = domain.Profile{
			UserID: in.UserID, FullName: in.FullName, Phone: in.Phone, Age: in.Age,
			Gender: in.Gender, Description: in.Description, Skills: in.Skills,
			Education: in.Education, Experience: in.Experience,
		}
		v.FormError, v.Banner = errBanner(err)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "profile", v)
		return
	}

	if returnPath != "" && strings.HasPrefix(returnPath, "/") {
		redirectMsg(w, r, returnPath, "Profile saved")
		return
	}
	redirectMsg(w, r, "/profile", "Profile saved")
}
