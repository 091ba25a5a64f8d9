package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrNoPendingOrder = errors.New("no pending order recorded")
)

// PendingOrder is the minimal resumption state persisted before the
// browser is handed to the payment gateway. The callback handler
// rehydrates from it in a later page lifetime.
type PendingOrder struct {
	OrderID   string `json:"order_id"`
	AccountID int64  `json:"account_id"`
	Amount    int64  `json:"amount"`
}

// Store keeps sessions and pending-order records in redis.
type Store struct {
	client          *redis.Client
	sessionTTL      time.Duration
	pendingOrderTTL time.Duration
}

func NewStore(client *redis.Client, sessionTTL, pendingOrderTTL time.Duration) *Store {
	return &Store{
		client:          client,
		sessionTTL:      sessionTTL,
		pendingOrderTTL: pendingOrderTTL,
	}
}

func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.AccountID), data, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, accountID int64) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, accountID int64) error {
	if err := s.client.Del(ctx, sessionKey(accountID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// SetPendingOrder records the order awaiting a gateway callback. Keyed by
// the order reference because the callback arrives unauthenticated.
func (s *Store) SetPendingOrder(ctx context.Context, pending PendingOrder) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending order: %w", err)
	}
	if err := s.client.Set(ctx, pendingKey(pending.OrderID), data, s.pendingOrderTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// PendingOrder looks up the resumption record for an order reference.
func (s *Store) PendingOrder(ctx context.Context, orderID string) (PendingOrder, error) {
	data, err := s.client.Get(ctx, pendingKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingOrder{}, ErrNoPendingOrder
	}
	if err != nil {
		return PendingOrder{}, fmt.Errorf("redis get failed: %w", err)
	}

	var pending PendingOrder
	if err := json.Unmarshal(data, &pending); err != nil {
		return PendingOrder{}, fmt.Errorf("unmarshal pending order: %w", err)
	}
	return pending, nil
}

// ClearPendingOrder drops the record once the order reached a terminal
// state. Clearing an already-cleared record is not an error; callback
// replays hit exactly that.
func (s *Store) ClearPendingOrder(ctx context.Context, orderID string) error {
	if err := s.client.Del(ctx, pendingKey(orderID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(accountID int64) string {
	return fmt.Sprintf("session:%d", accountID)
}

func pendingKey(orderID string) string {
	return fmt.Sprintf("pending_order:%s", orderID)
}
