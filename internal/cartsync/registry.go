package cartsync

import (
	"sync"

	"go.uber.org/zap"
)

// Registry hands out one Synchronizer per account. Each synchronizer is
// the single writer of its account's view, so the rest of the app only
// ever reads.
type Registry struct {
	store         RemoteCart
	cfg           Config
	log           *zap.Logger
	onAuthExpired func(accountID int64)

	mu    sync.Mutex
	syncs map[int64]*Synchronizer
}

func NewRegistry(store RemoteCart, cfg Config, log *zap.Logger, onAuthExpired func(accountID int64)) *Registry {
	return &Registry{
		store:         store,
		cfg:           cfg,
		log:           log,
		onAuthExpired: onAuthExpired,
		syncs:         make(map[int64]*Synchronizer),
	}
}

// For returns the account's synchronizer, creating it on first use and
// refreshing its credential on later ones.
func (r *Registry) For(accountID int64, token string) *Synchronizer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.syncs[accountID]; ok {
		s.UpdateToken(token)
		return s
	}

	s := NewSynchronizer(accountID, token, r.store, r.cfg, r.log, func() {
		r.Drop(accountID)
		if r.onAuthExpired != nil {
			r.onAuthExpired(accountID)
		}
	})
	r.syncs[accountID] = s
	return s
}

// ClearAccount empties the account's local cart if one is loaded. The
// payment reconciler calls this after a paid gateway order.
func (r *Registry) ClearAccount(accountID int64) {
	r.mu.Lock()
	s, ok := r.syncs[accountID]
	r.mu.Unlock()
	if ok {
		s.Clear()
	}
}

// Drop forgets the account's synchronizer entirely (logout, expiry).
func (r *Registry) Drop(accountID int64) {
	r.mu.Lock()
	s, ok := r.syncs[accountID]
	delete(r.syncs, accountID)
	r.mu.Unlock()
	if ok {
		s.Clear()
	}
}
