package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// ListUsers fetches all users (admin scope).
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, ListMeta, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users", nil, nil, nil)
	if err != nil {
		return nil, ListMeta{}, err
	}
	users, meta, err := decodeList[domain.User](raw)
	if err != nil {
		return nil, ListMeta{}, err
	}
	for i := range users {
		foldUser(&users[i])
	}
	return users, meta, nil
}

// GetUser fetches a single user, used to resolve applicant names.
func (c *Client) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &u); err != nil {
		return domain.User{}, err
	}
	foldUser(&u)
	return u, nil
}

// UserCreateInput is the admin's create-user payload.
type UserCreateInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// CreateUser creates an account on behalf of an admin.
func (c *Client) CreateUser(ctx context.Context, in UserCreateInput) (domain.User, error) {
	var u domain.User
	if _, err := c.do(ctx, http.MethodPost, "/users", nil, in, &u); err != nil {
		return domain.User{}, err
	}
	foldUser(&u)
	return u, nil
}

// UserUpdateInput is a partial update; empty fields are omitted so account
// edits and password changes can be sent independently.
type UserUpdateInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateUser patches a user record and returns the updated user.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdateInput) (domain.User, error) {
	var u domain.User
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, in, &u); err != nil {
		return domain.User{}, err
	}
	foldUser(&u)
	return u, nil
}

// DeleteUser removes a user account (admin scope).
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
	return err
}
