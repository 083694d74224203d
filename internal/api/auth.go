package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

// TokenResponse is the OAuth2-style payload from POST /auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The endpoint is
// form-encoded and uses "username" for the email, per the backend's OAuth2
// password flow.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out TokenResponse
	if _, err := c.doForm(ctx, http.MethodPost, "/auth/token", form, &out); err != nil {
		return TokenResponse{}, err
	}
	return out, nil
}

// RegisterInput is the account-creation payload.
type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Register creates a new account and returns the created user.
func (c *Client) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	var u domain.User
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &u); err != nil {
		return domain.User{}, err
	}
	foldUser(&u)
	return u, nil
}

// Me resolves the current session's user from the bearer token.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return domain.User{}, err
	}
	foldUser(&u)
	return u, nil
}

// VerifyPassword checks a password without establishing a session. Used by
// account settings to confirm the current password before applying changes.
func (c *Client) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Verified bool `json:"verified"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/auth/verify-password", nil, in, &out); err != nil {
		return false, err
	}
	return out.Verified, nil
}
