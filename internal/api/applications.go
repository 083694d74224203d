package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

func (c *Client) listApplications(ctx context.Context, path string, page, limit int) ([]domain.Application, ListMeta, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("skip", strconv.Itoa((page-1)*limit))
		q.Set("limit", strconv.Itoa(limit))
	}

	raw, err := c.do(ctx, http.MethodGet, path, q, nil, nil)
	if err != nil {
		return nil, ListMeta{}, err
	}
	apps, meta, err := decodeList[domain.Application](raw)
	if err != nil {
		return nil, ListMeta{}, err
	}
	for i := range apps {
		foldApplication(&apps[i])
	}
	return apps, meta, nil
}

// ListApplications fetches one page of all applications (admin scope).
func (c *Client) ListApplications(ctx context.Context, page, limit int) ([]domain.Application, ListMeta, error) {
	return c.listApplications(ctx, "/applications", page, limit)
}

// ListApplicationsByUser fetches a job seeker's applications. limit 0 fetches
// with the backend's defaults, which is how the eligibility gate uses it.
func (c *Client) ListApplicationsByUser(ctx context.Context, userID int64, page, limit int) ([]domain.Application, ListMeta, error) {
	return c.listApplications(ctx, fmt.Sprintf("/applications/user/%d", userID), page, limit)
}

// ListApplicationsByJob fetches the applications targeting one job post.
func (c *Client) ListApplicationsByJob(ctx context.Context, jobPostID int64, page, limit int) ([]domain.Application, ListMeta, error) {
	return c.listApplications(ctx, fmt.Sprintf("/applications/job/%d", jobPostID), page, limit)
}

// ApplicationInput is the create payload: the CV travels inline as base64.
type ApplicationInput struct {
	UserID        int64  `json:"user_id"`
	JobPostID     int64  `json:"job_post_id"`
	CVData        string `json:"cv_data"`
	CVFilename    string `json:"cv_filename"`
	CVContentType string `json:"cv_content_type"`
}

// CreateApplication submits a new application.
func (c *Client) CreateApplication(ctx context.Context, in ApplicationInput) (domain.Application, error) {
	var app domain.Application
	if _, err := c.do(ctx, http.MethodPost, "/applications", nil, in, &app); err != nil {
		return domain.Application{}, err
	}
	foldApplication(&app)
	return app, nil
}

// UpdateApplicationStatus is the employer's accept/reject transition.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (domain.Application, error) {
	in := map[string]domain.ApplicationStatus{"status": status}
	var app domain.Application
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d", id), nil, in, &app); err != nil {
		return domain.Application{}, err
	}
	foldApplication(&app)
	return app, nil
}
