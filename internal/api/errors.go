package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// The gateway collapses every failure into one of four error types so views
// can pick a rendering without inspecting status codes themselves.

// ValidationError is a client-correctable 4xx with optional field detail.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// FieldError is one entry of a FastAPI validation detail array.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError covers 401 and 403 responses. A 401 additionally forces a global
// logout via the client's auth-failure hook.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string { return e.Message }

// NotFoundError is an expected absence (404), handled as a UI state rather
// than an alarm. Message carries the backend detail so callers can recognize
// markers such as "Profile not found".
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ServerError covers 5xx responses and transport failures.
type ServerError struct {
	StatusCode int // 0 for transport errors
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// detailEnvelope matches the backend's error body. The detail field is either
// a plain string or a FastAPI field-error array.
type detailEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

type fastAPIFieldError struct {
	Loc []json.RawMessage `json:"loc"`
	Msg string            `json:"msg"`
}

// errorFromResponse turns a non-2xx response into a typed error, extracting
// the detail message when present and falling back to a generic one.
func errorFromResponse(resp *http.Response, fallback string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg, fields := extractDetail(body)
	if msg == "" {
		msg = fallback
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Message: msg}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: msg}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode, Message: msg}
	default:
		return &ValidationError{Message: msg, Fields: fields}
	}
}

// extractDetail parses the detail field. For a field-error array the message
// is assembled as "field: msg" pairs, mirroring how the original client
// displayed FastAPI validation output.
func extractDetail(body []byte) (string, []FieldError) {
	var env detailEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s, nil
	}

	var arr []fastAPIFieldError
	if err := json.Unmarshal(env.Detail, &arr); err == nil && len(arr) > 0 {
		fields := make([]FieldError, 0, len(arr))
		parts := make([]string, 0, len(arr))
		for _, fe := range arr {
			field := locString(fe.Loc)
			fields = append(fields, FieldError{Field: field, Message: fe.Msg})
			parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Msg))
		}
		return strings.Join(parts, ", "), fields
	}

	return "", nil
}

// locString joins a FastAPI loc array ("body", "salary_min") into a dotted
// field path, skipping the leading "body" segment.
func locString(loc []json.RawMessage) string {
	var parts []string
	for _, raw := range loc {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			parts = append(parts, fmt.Sprintf("%d", n))
		}
	}
	if len(parts) > 1 && parts[0] == "body" {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return "unknown field"
	}
	return strings.Join(parts, ".")
}
