package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogoutService is the auth collaborator's piece the manager needs.
type LogoutService interface {
	Logout(ctx context.Context, token string, accountID int64) error
}

// Manager ties the durable store to the auth collaborator and enforces
// the teardown rule: local state always goes, even when the remote call
// does not.
type Manager struct {
	store *Store
	auth  LogoutService
	log   *zap.Logger
}

func NewManager(store *Store, auth LogoutService, log *zap.Logger) *Manager {
	return &Manager{store: store, auth: auth, log: log}
}

// Resolve returns the stored session for a bearer token, creating one
// when the token is valid but not yet recorded (fresh sign-in or a
// process restart after the gateway handoff).
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	derived, err := FromToken(token)
	if err != nil {
		return nil, err
	}

	stored, err := m.store.Get(ctx, derived.AccountID)
	if err == nil && stored.Token == token {
		return stored, nil
	}

	if err := m.store.Save(ctx, derived); err != nil {
		return nil, err
	}
	return derived, nil
}

// Invalidate ends a session. The remote logout is best-effort; the local
// record is removed regardless so an expired credential can never keep a
// session alive.
func (m *Manager) Invalidate(ctx context.Context, sess *Session) {
	remoteCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := m.auth.Logout(remoteCtx, sess.Token, sess.AccountID); err != nil {
		m.log.Warn("remote logout failed, clearing local session anyway",
			zap.Int64("account_id", sess.AccountID), zap.Error(err))
	}

	if err := m.store.Delete(ctx, sess.AccountID); err != nil {
		m.log.Error("failed to delete local session", zap.Int64("account_id", sess.AccountID), zap.Error(err))
	}
}
