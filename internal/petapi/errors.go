package petapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError wraps failures to reach the API at all
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("%s: API error (status %d): %s", e.Operation, e.StatusCode, detail)
	}

	return fmt.Sprintf("%s: API error (status %d)", e.Operation, e.StatusCode)
}

// Detail extracts the human readable message from the error body. The API
// reports problems as {"error": "..."} or {"detail": "..."}; field validation
// failures come back as {"field": ["msg", ...]}.
func (e *StatusError) Detail() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return ""
	}

	var simple struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}

	if err := json.Unmarshal([]byte(body), &simple); err == nil {
		if simple.Error != "" {
			return simple.Error
		}

		if simple.Detail != "" {
			return simple.Detail
		}
	}

	if fields := e.FieldErrors(); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, field := range sortedKeys(fields) {
			parts = append(parts, field+": "+strings.Join(fields[field], " "))
		}

		return strings.Join(parts, "; ")
	}

	return truncate(body, 200)
}

// FieldErrors decodes a validation error body. It returns nil when the body
// has another shape.
func (e *StatusError) FieldErrors() map[string][]string {
	if e.StatusCode != http.StatusBadRequest {
		return nil
	}

	var fields map[string][]string
	if err := json.Unmarshal([]byte(e.Body), &fields); err != nil {
		return nil
	}

	return fields
}

// NotFound reports a 404 response
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// DecodeError wraps a success response whose body could not be parsed
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode response: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether re-issuing the request may succeed: transport
// failures and server-side (5xx) errors are, client errors and malformed
// bodies are not.
func IsRetryable(err error) bool {
	var terr *TransportError
	if errors.As(err, &terr) {
		return true
	}

	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.StatusCode >= 500
	}

	return false
}

// Kind names the failure category of err for display and logs.
func Kind(err error) string {
	var (
		terr *TransportError
		serr *StatusError
		derr *DecodeError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &terr):
		return "network"
	case errors.As(err, &serr):
		return "status"
	case errors.As(err, &derr):
		return "decode"
	default:
		return "other"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
