package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
)

// CartStore is the client for the authoritative remote cart collection.
type CartStore struct {
	baseURL string
	client  *http.Client
}

func NewCartStore(baseURL string, timeout time.Duration) *CartStore {
	return &CartStore{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// List fetches every cart line for the account.
func (c *CartStore) List(ctx context.Context, token string, accountID int64) ([]domain.CartLine, error) {
	url := fmt.Sprintf("%s/api/cart/%d", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build cart list request: %w", err)
	}
	setBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var lines []domain.CartLine
	if err := decodeJSON(resp, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SetQuantity sets the absolute quantity of a line. One call carries the
// final desired value; the synchronizer coalesces bursts before calling.
func (c *CartStore) SetQuantity(ctx context.Context, token string, accountID int64, lineID string, quantity int) error {
	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return fmt.Errorf("marshal quantity: %w", err)
	}

	url := fmt.Sprintf("%s/api/cart/%d/items/%s", c.baseURL, accountID, lineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build quantity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

// Remove deletes a line from the account's cart.
func (c *CartStore) Remove(ctx context.Context, token string, accountID int64, lineID string) error {
	url := fmt.Sprintf("%s/api/cart/%d/items/%s", c.baseURL, accountID, lineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build remove request: %w", err)
	}
	setBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remove line: %w", err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
