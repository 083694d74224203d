package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the account role assigned by the backend at registration.
type Role string

const (
	RoleJobSeeker Role = "Job Seeker"
	RoleEmployer  Role = "Employer"
	RoleAdmin     Role = "Admin"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// ApplicationStatus is the employer-controlled state of an application.
// Pending is the initial state; Accepted and Rejected are terminal.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusAccepted ApplicationStatus = "Accepted"
	StatusRejected ApplicationStatus = "Rejected"
)

// JobType values accepted by the backend for job posts.
var JobTypes = []string{"Full-time", "Part-time", "Freelance", "Other"}

// Theme is the UI theme preference, persisted independently of the session.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// User is an account record as returned by the backend. The backend emits the
// identifier under either "id" or "_id" depending on the route; the gateway
// folds both into ID before a User reaches any other package.
type User struct {
	ID        int64     `json:"id"`
	AltID     int64     `json:"_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// JobPosting is a job post record. SalaryMin/SalaryMax are in IDR.
type JobPosting struct {
	ID           int64     `json:"id"`
	AltID        int64     `json:"_id,omitempty"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	JobType      string    `json:"job_type"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	SalaryMin    int64     `json:"salary_min"`
	SalaryMax    int64     `json:"salary_max"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Application is a job application with an embedded base64 CV payload.
type Application struct {
	ID            int64             `json:"id"`
	AltID         int64             `json:"_id,omitempty"`
	JobPostID     int64             `json:"job_post_id"`
	UserID        int64             `json:"user_id"`
	Status        ApplicationStatus `json:"status"`
	CVFilename    string            `json:"cv_filename"`
	CVContentType string            `json:"cv_content_type"`
	CVData        string            `json:"cv_data,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Profile is the job seeker profile that must exist before applying.
// Skills preserve the order the user entered them in.
type Profile struct {
	ID          int64    `json:"id"`
	AltID       int64    `json:"_id,omitempty"`
	UserID      int64    `json:"user_id"`
	FullName    string   `json:"full_name"`
	Phone       string   `json:"phone"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Education   string   `json:"education"`
	Experience  string   `json:"experience"`
}

// ErrSalaryRange is returned when a job form's minimum salary exceeds its maximum.
var ErrSalaryRange = errors.New("minimum salary cannot be greater than maximum salary")

// ValidateSalaryRange enforces salaryMin <= salaryMax before a job post is
// submitted. The backend does not guarantee this, so the client must.
func ValidateSalaryRange(min, max int64) error {
	if min > max {
		return ErrSalaryRange
	}
	return nil
}

// SplitRequirements turns the one-requirement-per-line textarea value into the
// list the backend expects: trimmed, blank lines dropped, order preserved.
func SplitRequirements(text string) []string {
	var reqs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			reqs = append(reqs, line)
		}
	}
	return reqs
}

// JoinRequirements is the inverse of SplitRequirements, used to prefill the
// edit form.
func JoinRequirements(reqs []string) string {
	return strings.Join(reqs, "\n")
}

// SplitSkills parses the comma-separated skills input, preserving order and
// dropping blanks.
func SplitSkills(input string) []string {
	var skills []string
	for _, s := range strings.Split(input, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
