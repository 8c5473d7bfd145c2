package storefront

import "fmt"

// APIError is a non-2xx response from shopsearch or the analytics collaborator.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("storefront: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("storefront: status %d: %s: %s", e.StatusCode, e.Message, e.Details)
}
