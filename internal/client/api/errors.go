package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyPath           = errors.New("empty request path")
	ErrContentTypeRequired = errors.New("raw body requires an explicit content type")
	ErrNetworkUnreachable  = errors.New("network unreachable")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidResponse     = errors.New("invalid response body")
)

// APIError is a non-2xx response that was not recovered by a session refresh.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// newAPIError extracts the server-provided message from the usual error
// envelopes ({"detail": ...}, {"message": ...}, {"error": ...}).
func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: serverMessage(status, body),
		Body:    body,
	}
}

func serverMessage(status int, body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
			// FastAPI validation errors carry a list in detail.
			if len(raw) > 0 && string(raw) != "null" {
				return string(raw)
			}
		}
		return http.StatusText(status)
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 512 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}
