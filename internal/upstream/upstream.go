// Package upstream holds the HTTP clients for the storefront's remote
// collaborators: the cart store, the order record store and the auth
// service. All of them speak JSON and authenticate with a bearer token.
package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrAuthExpired means the collaborator rejected the bearer
	// credential. The session must be invalidated.
	ErrAuthExpired = errors.New("bearer credential expired or invalid")
)

// StoreError carries the collaborator's own error payload so the user
// sees the store's message instead of a generic one.
type StoreError struct {
	StatusCode int
	Message    string
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store rejected request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("store rejected request (%d)", e.StatusCode)
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// checkResponse maps non-2xx responses onto the error taxonomy: 401 is
// always ErrAuthExpired, anything else becomes a StoreError with the
// body's message when one exists.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}

	var payload errorPayload
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(body, &payload); err == nil {
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		return &StoreError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &StoreError{StatusCode: resp.StatusCode}
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
