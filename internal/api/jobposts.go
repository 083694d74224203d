package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// JobFilters are the server-side filters accepted by GET /job-posts.
type JobFilters struct {
	Title     string
	JobType   string
	MinSalary *int64
	MaxSalary *int64
}

func (f JobFilters) query(v url.Values) {
	if f.Title != "" {
		v.Set("title", f.Title)
	}
	if f.JobType != "" {
		v.Set("job_type", f.JobType)
	}
	if f.MinSalary != nil {
		v.Set("min_salary", strconv.FormatInt(*f.MinSalary, 10))
	}
	if f.MaxSalary != nil {
		v.Set("max_salary", strconv.FormatInt(*f.MaxSalary, 10))
	}
}

// ListJobPosts fetches one page of job posts. page is 1-based; the backend
// takes skip/limit.
func (c *Client) ListJobPosts(ctx context.Context, page, limit int, f JobFilters) ([]domain.JobPosting, ListMeta, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa((page-1)*limit))
	q.Set("limit", strconv.Itoa(limit))
	f.query(q)

	raw, err := c.do(ctx, http.MethodGet, "/job-posts", q, nil, nil)
	if err != nil {
		return nil, ListMeta{}, err
	}
	jobs, meta, err := decodeList[domain.JobPosting](raw)
	if err != nil {
		return nil, ListMeta{}, err
	}
	for i := range jobs {
		foldJob(&jobs[i])
	}
	return jobs, meta, nil
}

// ListJobPostsByUser fetches one page of an employer's own job posts.
func (c *Client) ListJobPostsByUser(ctx context.Context, userID int64, page, limit int) ([]domain.JobPosting, ListMeta, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa((page-1)*limit))
	q.Set("limit", strconv.Itoa(limit))

	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/job-posts/user/%d", userID), q, nil, nil)
	if err != nil {
		return nil, ListMeta{}, err
	}
	jobs, meta, err := decodeList[domain.JobPosting](raw)
	if err != nil {
		return nil, ListMeta{}, err
	}
	for i := range jobs {
		foldJob(&jobs[i])
	}
	return jobs, meta, nil
}

// GetJobPost fetches a single job post by id.
func (c *Client) GetJobPost(ctx context.Context, id int64) (domain.JobPosting, error) {
	var job domain.JobPosting
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/job-posts/%d", id), nil, nil, &job); err != nil {
		return domain.JobPosting{}, err
	}
	foldJob(&job)
	return job, nil
}

// JobPostInput is the create/update payload for a job post.
type JobPostInput struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	JobType      string   `json:"job_type"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	SalaryMin    int64    `json:"salary_min"`
	SalaryMax    int64    `json:"salary_max"`
}

// CreateJobPost creates a job post owned by the current employer.
func (c *Client) CreateJobPost(ctx context.Context, in JobPostInput) (domain.JobPosting, error) {
	var job domain.JobPosting
	if _, err := c.do(ctx, http.MethodPost, "/job-posts", nil, in, &job); err != nil {
		return domain.JobPosting{}, err
	}
	foldJob(&job)
	return job, nil
}

// UpdateJobPost replaces a job post's fields.
func (c *Client) UpdateJobPost(ctx context.Context, id int64, in JobPostInput) (domain.JobPosting, error) {
	var job domain.JobPosting
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/job-posts/%d", id), nil, in, &job); err != nil {
		return domain.JobPosting{}, err
	}
	foldJob(&job)
	return job, nil
}

// DeleteJobPost deletes a job post (owner or admin).
func (c *Client) DeleteJobPost(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/job-posts/%d", id), nil, nil, nil)
	return err
}
