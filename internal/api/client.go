// Package api is the gateway to the job board REST backend: the only package
// in jobdesk that performs network I/O. Every call takes a context, attaches
// the bearer token when one is present, and fails with exactly one of the
// typed errors in errors.go. Nothing here retries; "Try Again" is a view
// affordance.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TokenSource supplies the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Client is an HTTP client for the job board API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter

	// onAuthFailure runs whenever any call receives a 401. Wired to the
	// session store's logout so an expired token clears local state no
	// matter which view triggered the call.
	onAuthFailure func()
}

// New creates a gateway client. tokens may be nil for an unauthenticated
// client (login/register still work).
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
		// Keeps fan-out views (per-job applications, per-applicant name
		// lookups) from hammering the backend.
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}
}

// SetAuthFailureHook registers the forced-logout callback invoked on any 401
// response. The hook receives no arguments; the caller decides what logout
// means.
func (c *Client) SetAuthFailureHook(fn func()) {
	c.onAuthFailure = fn
}

// do performs one JSON request. out may be nil for calls with no response
// body of interest. The raw response body is returned for list endpoints
// that need shape normalization.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, &ServerError{Message: fmt.Sprintf("encode request: %v", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, method, path, out)
}

// doForm performs one form-encoded request (the token endpoint is OAuth2
// form-style, not JSON).
func (c *Client) doForm(ctx context.Context, method, path string, form url.Values, out any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, nil, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, method, path, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, &ServerError{Message: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) send(req *http.Request, method, path string, out any) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, &ServerError{Message: fmt.Sprintf("request canceled: %v", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[gateway] %s %s error: %v", method, path, err)
		return nil, &ServerError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	log.Printf("[gateway] %s %s status=%d duration=%dms",
		method, path, resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := errorFromResponse(resp, fmt.Sprintf("%s %s failed", method, path))
		if ae, ok := err.(*AuthError); ok && ae.StatusCode == http.StatusUnauthorized && c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServerError{Message: fmt.Sprintf("read response: %v", err)}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, &ServerError{Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return raw, nil
}
