package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuthService is the client for the authentication collaborator. The
// storefront never issues credentials itself; it only tells the service
// when a session ends.
type AuthService struct {
	baseURL string
	client  *http.Client
}

func NewAuthService(baseURL string, timeout time.Duration) *AuthService {
	return &AuthService{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// Logout reports the end of a session. Callers treat it as best-effort:
// local state is torn down whether or not this succeeds.
func (a *AuthService) Logout(ctx context.Context, token string, accountID int64) error {
	body, err := json.Marshal(map[string]int64{"id": accountID})
	if err != nil {
		return fmt.Errorf("marshal logout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/auth/logout", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}
