// Package eligibility decides whether the current user may open the
// application form for a job, and with what message. The checks run in a
// fixed order; the first redirect wins and suppresses all later steps.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// Gateway is the slice of the API client the gate needs.
type Gateway interface {
	GetProfileByUser(ctx context.Context, userID int64) (domain.Profile, error)
	ListApplicationsByUser(ctx context.Context, userID int64, page, limit int) ([]domain.Application, api.ListMeta, error)
}

// Decision is the outcome of a gate check. When Redirect is set the apply
// form must not render; Message travels to the redirect target as a banner.
// Otherwise CanApply and Message drive the form itself.
type Decision struct {
	Redirect   string
	Message    string
	ReturnPath string

	CanApply bool
	Profile  domain.Profile
}

// Gate runs the pre-application checks for a job post.
type Gate struct {
	gw Gateway
}

func New(gw Gateway) *Gate {
	return &Gate{gw: gw}
}

// Check evaluates whether user may apply to the job post. A zero user (no
// session) and a non-seeker role short-circuit to redirects; a missing
// profile redirects to the profile form with the apply path preserved.
// Past applications for the same job decide the rest: Pending and Accepted
// block, Rejected allows a re-apply with a notice. If the applications list
// cannot be fetched the gate fails open and allows the application.
func (g *Gate) Check(ctx context.Context, user domain.User, hasSession bool, jobPostID int64) Decision {
	applyPath := fmt.Sprintf("/jobs/%d/apply", jobPostID)

	if !hasSession {
		return Decision{
			Redirect:   "/login",
			Message:    "Please login to apply for this job",
			ReturnPath: applyPath,
		}
	}

	if user.Role != domain.RoleJobSeeker {
		return Decision{
			Redirect: fmt.Sprintf("/jobs/%d", jobPostID),
			Message:  "Only job seekers can apply for positions",
		}
	}

	profile, err := g.gw.GetProfileByUser(ctx, user.ID)
	if err != nil {
		if isProfileMissing(err) {
			return Decision{
				Redirect:   "/profile",
				Message:    "Please complete your profile before applying for jobs",
				ReturnPath: applyPath,
			}
		}
		log.Printf("[eligibility] profile fetch for user %d: %v", user.ID, err)
	}

	d := Decision{Profile: profile}

	apps, _, err := g.gw.ListApplicationsByUser(ctx, user.ID, 1, 0)
	if err != nil {
		// Fail open: the backend rejects true duplicates anyway.
		log.Printf("[eligibility] applications fetch for user %d: %v", user.ID, err)
		d.CanApply = true
		return d
	}

	existing, found := findForJob(apps, jobPostID)
	if !found {
		d.CanApply = true
		return d
	}

	switch existing.Status {
	case domain.StatusPending:
		d.Message = "You already have a pending application for this job."
	case domain.StatusAccepted:
		d.Message = "You have already been accepted for this job."
	case domain.StatusRejected:
		d.CanApply = true
		d.Message = "Your previous application was rejected. You may re-apply."
	default:
		d.Message = "You have already applied for this job."
	}
	return d
}

// findForJob returns the user's application targeting jobPostID, if any.
func findForJob(apps []domain.Application, jobPostID int64) (domain.Application, bool) {
	for _, a := range apps {
		if a.JobPostID == jobPostID {
			return a, true
		}
	}
	return domain.Application{}, false
}

// isProfileMissing reports whether err is the backend's missing-profile
// signal: a 404 whose detail carries the "not found" marker.
func isProfileMissing(err error) bool {
	var nfe *api.NotFoundError
	if !errors.As(err, &nfe) {
		return false
	}
	msg := strings.ToLower(nfe.Message)
	return strings.Contains(msg, "not found")
}
