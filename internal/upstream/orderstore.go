package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
)

// OrderStore is the client for the authoritative order persistence and
// the gateway-callback verification endpoint. Create and VerifyCallback
// sit behind a circuit breaker so a struggling store fails fast instead
// of piling up checkout attempts.
type OrderStore struct {
	baseURL  string
	client   *http.Client
	createCB *gobreaker.CircuitBreaker[domain.OrderReceipt]
	verifyCB *gobreaker.CircuitBreaker[domain.CallbackVerdict]
}

func NewOrderStore(baseURL string, timeout time.Duration) *OrderStore {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}
	}
	return &OrderStore{
		baseURL:  baseURL,
		client:   newHTTPClient(timeout),
		createCB: gobreaker.NewCircuitBreaker[domain.OrderReceipt](settings("order-store-create")),
		verifyCB: gobreaker.NewCircuitBreaker[domain.CallbackVerdict](settings("order-store-verify")),
	}
}

// Create submits an order and returns the store-assigned id, plus the
// gateway redirect URL for VNPay orders.
func (o *OrderStore) Create(ctx context.Context, token string, req domain.OrderRequest) (domain.OrderReceipt, error) {
	return o.createCB.Execute(func() (domain.OrderReceipt, error) {
		body, err := json.Marshal(req)
		if err != nil {
			return domain.OrderReceipt{}, fmt.Errorf("marshal order request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/orders", bytes.NewReader(body))
		if err != nil {
			return domain.OrderReceipt{}, fmt.Errorf("build create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		setBearer(httpReq, token)

		resp, err := o.client.Do(httpReq)
		if err != nil {
			return domain.OrderReceipt{}, fmt.Errorf("submit order: %w", err)
		}
		defer resp.Body.Close()

		if err := checkResponse(resp); err != nil {
			return domain.OrderReceipt{}, err
		}

		var receipt domain.OrderReceipt
		if err := decodeJSON(resp, &receipt); err != nil {
			return domain.OrderReceipt{}, err
		}
		return receipt, nil
	})
}

// VerifyCallback forwards the gateway's callback parameters verbatim.
// Signature verification is the store's job; this client only relays.
func (o *OrderStore) VerifyCallback(ctx context.Context, params map[string]string) (domain.CallbackVerdict, error) {
	return o.verifyCB.Execute(func() (domain.CallbackVerdict, error) {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
			o.baseURL+"/api/pay/vnpay/callback?"+query.Encode(), nil)
		if err != nil {
			return domain.CallbackVerdict{}, fmt.Errorf("build verify request: %w", err)
		}

		resp, err := o.client.Do(httpReq)
		if err != nil {
			return domain.CallbackVerdict{}, fmt.Errorf("verify callback: %w", err)
		}
		defer resp.Body.Close()

		if err := checkResponse(resp); err != nil {
			return domain.CallbackVerdict{}, err
		}

		var verdict domain.CallbackVerdict
		if err := decodeJSON(resp, &verdict); err != nil {
			return domain.CallbackVerdict{}, err
		}
		return verdict, nil
	})
}

// ListByAccount returns the account's order history. Read-only; the
// profile page renders it.
func (o *OrderStore) ListByAccount(ctx context.Context, token string, accountID int64) ([]domain.Order, error) {
	url := fmt.Sprintf("%s/api/orders/user/%d", o.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	setBearer(req, token)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var orders []domain.Order
	if err := decodeJSON(resp, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
