package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// GetProfileByUser fetches a job seeker's profile. A missing profile comes
// back as *NotFoundError whose message carries the backend's
// "Profile not found" marker; callers treat that as an expected state.
func (c *Client) GetProfileByUser(ctx context.Context, userID int64) (domain.Profile, error) {
	var p domain.Profile
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profiles/user/%d", userID), nil, nil, &p); err != nil {
		return domain.Profile{}, err
	}
	foldProfile(&p)
	return p, nil
}

// ProfileInput is the create/update payload for a job seeker profile.
type ProfileInput struct {
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

// CreateProfile creates the profile for the current job seeker.
func (c *Client) CreateProfile(ctx context.Context, in ProfileInput) (domain.Profile, error) {
	var p domain.Profile
	if _, err := c.do(ctx, http.MethodPost, "/profiles", nil, in, &p); err != nil {
		return domain.Profile{}, err
	}
	foldProfile(&p)
	return p, nil
}

// UpdateProfile replaces an existing profile's fields.
func (c *Client) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (domain.Profile, error) {
	var p domain.Profile
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/profiles/%d", id), nil, in, &p); err != nil {
		return domain.Profile{}, err
	}
	foldProfile(&p)
	return p, nil
}
