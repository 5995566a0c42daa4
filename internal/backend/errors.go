package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is returned by GetVideo when the backend has no such video,
	// either as a 404 or as an empty/null body.
	ErrNotFound = errors.New("video not found")

	// ErrUnexpectedResponse marks a 2xx response whose body does not match the
	// minimal shape the client expects.
	ErrUnexpectedResponse = errors.New("unexpected response from backend")
)

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, detail)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Detail extracts a human readable reason from a JSON error body of the form
// {"detail": "..."} or {"error": "..."}.
func (e *StatusError) Detail() string {
	var body struct {
		Detail any `json:"detail"`
		Error  any `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}
	for _, v := range []any{body.Detail, body.Error} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// IsStatus reports whether err wraps a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// UploadFailureReason turns an upload error into the short text shown to the
// person who submitted the form.
func UploadFailureReason(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		switch se.StatusCode {
		case http.StatusRequestEntityTooLarge:
			return "Upload failed: file too large"
		case http.StatusTooManyRequests:
			return "Upload failed: too many uploads, try again later"
		}
		if detail := se.Detail(); detail != "" {
			return "Upload failed: " + detail
		}
		return "Upload failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "Upload failed: backend timed out"
	case errors.Is(err, context.Canceled):
		return "Upload failed: request cancelled"
	case errors.Is(err, ErrUnexpectedResponse):
		return "Upload failed: unexpected response from backend"
	default:
		return "Upload failed: backend unreachable"
	}
}
