package vaultsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError represents a non-success response from the vault service.
// Message is taken from the response body text when present, otherwise
// from the HTTP status text, in that preference order.
type APIError struct {
	// Status is the HTTP status code of the response
	Status int

	// Message is the human-readable failure description
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// IsAuthFailure reports whether err is a credential or code rejection
// from the backend. The backend deliberately returns the same shape for
// a wrong password and an unknown user, so no finer distinction exists.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// newAPIError builds an APIError from a response and its (already read)
// body.
func newAPIError(resp *http.Response, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = "request failed"
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// decodeJSON decodes a successful JSON response into target, or returns
// a typed *APIError for non-2xx responses. A 204 or empty body leaves
// target untouched, mirroring the "success with no body is an empty
// result" transport contract.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp, body)
	}

	if resp.StatusCode == http.StatusNoContent || len(body) == 0 || target == nil {
		return nil
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "application/json") {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
