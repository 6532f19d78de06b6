package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the upstream API. Message carries the
// upstream "message" (or "detail") field when one was sent.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error %d", e.Status)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: decodeMessage(body)}
}

// IsUnauthorized reports whether the upstream rejected the credentials.
// Both 401 and 403 mean the browser has no usable session.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// UserMessage returns the text to show to a user for err, falling back to
// fallback when the upstream gave no message.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
