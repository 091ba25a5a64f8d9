// Package cartsync owns the in-memory view of one account's cart. Edits
// apply to the view immediately; the remote cart store is brought up to
// date by per-line debounced commits, so a burst of taps on one line
// costs a single network call carrying the final quantity.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

var ErrLineNotFound = errors.New("cart line not found")

// RemoteCart is the slice of the cart store client the synchronizer uses.
type RemoteCart interface {
	List(ctx context.Context, token string, accountID int64) ([]domain.CartLine, error)
	SetQuantity(ctx context.Context, token string, accountID int64, lineID string, quantity int) error
	Remove(ctx context.Context, token string, accountID int64, lineID string) error
}

type Config struct {
	// QuiesceWindow is how long a line must stay untouched before its
	// quantity is committed. Zero means the 500ms default.
	QuiesceWindow time.Duration
	CommitTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QuiesceWindow <= 0 {
		c.QuiesceWindow = 500 * time.Millisecond
	}
	if c.CommitTimeout <= 0 {
		c.CommitTimeout = 10 * time.Second
	}
	return c
}

// Notice is a surfaced, dismissible failure from a background commit.
type Notice struct {
	LineID string
	Err    error
}

// pendingEdit tracks the newest desired quantity for one line. At most
// one network call per line is in flight; newer intents supersede the
// timer but never cancel an in-flight call.
type pendingEdit struct {
	desired  int
	sent     int
	inFlight bool
	timer    *time.Timer
}

type Synchronizer struct {
	accountID     int64
	store         RemoteCart
	cfg           Config
	log           *zap.Logger
	onAuthExpired func()

	mu       sync.Mutex
	token    string
	view     domain.CartView
	lastGood map[string]domain.CartLine
	pending  map[string]*pendingEdit
	notices  []Notice

	// loads are tagged with a monotonic counter so a slow fetch can
	// never overwrite the result of a newer one
	loadSeq     uint64
	loadApplied uint64
	sfg         singleflight.Group
}

func NewSynchronizer(accountID int64, token string, store RemoteCart, cfg Config, log *zap.Logger, onAuthExpired func()) *Synchronizer {
	return &Synchronizer{
		accountID:     accountID,
		token:         token,
		store:         store,
		cfg:           cfg.withDefaults(),
		log:           log,
		onAuthExpired: onAuthExpired,
		lastGood:      make(map[string]domain.CartLine),
		pending:       make(map[string]*pendingEdit),
	}
}

// UpdateToken swaps the bearer credential after a token refresh.
func (s *Synchronizer) UpdateToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// View returns a copy of the current cart view.
func (s *Synchronizer) View() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Clone()
}

// Notices drains the surfaced background-commit failures.
func (s *Synchronizer) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.notices
	s.notices = nil
	return drained
}

// Load replaces the view with the store's state. Concurrent loads share
// one fetch; a result older than the latest issued load is discarded, and
// lines with pending edits keep their optimistic quantity on top of the
// accepted snapshot.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	token := s.token
	s.mu.Unlock()

	result, err, _ := s.sfg.Do("load", func() (interface{}, error) {
		return s.store.List(ctx, token, s.accountID)
	})
	if err != nil {
		s.mu.Lock()
		s.clearLocked()
		s.mu.Unlock()
		if errors.Is(err, upstream.ErrAuthExpired) {
			s.notifyAuthExpired()
			return upstream.ErrAuthExpired
		}
		return fmt.Errorf("load cart: %w", err)
	}
	lines := result.([]domain.CartLine)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.loadApplied {
		// a newer load already landed
		return nil
	}
	s.loadApplied = seq

	s.view.Lines = make([]domain.CartLine, len(lines))
	copy(s.view.Lines, lines)
	seen := make(map[string]bool, len(lines))
	for i := range s.view.Lines {
		id := s.view.Lines[i].LineID
		seen[id] = true
		s.lastGood[id] = lines[i]
		if pe, ok := s.pending[id]; ok {
			// optimistic intent outranks the snapshot until it commits
			s.view.Lines[i].Quantity = pe.desired
		}
	}
	// forget edits for lines the store no longer has
	for id, pe := range s.pending {
		if !seen[id] {
			if pe.timer != nil {
				pe.timer.Stop()
			}
			delete(s.pending, id)
		}
	}
	for id := range s.lastGood {
		if !seen[id] {
			delete(s.lastGood, id)
		}
	}
	s.view.Recompute()
	return nil
}

// Increment raises the visible quantity by one and schedules a debounced
// commit of the new value.
func (s *Synchronizer) Increment(lineID string) (domain.CartView, error) {
	return s.adjust(lineID, +1)
}

// Decrement lowers the visible quantity by one, clamped at 1; at the
// floor it is a no-op.
func (s *Synchronizer) Decrement(lineID string) (domain.CartView, error) {
	return s.adjust(lineID, -1)
}

func (s *Synchronizer) adjust(lineID string, delta int) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.view.Line(lineID)
	if i < 0 {
		return s.view.Clone(), ErrLineNotFound
	}
	next := s.view.Lines[i].Quantity + delta
	if next < 1 {
		return s.view.Clone(), nil
	}
	s.view.Lines[i].Quantity = next
	s.view.Recompute()
	s.scheduleLocked(lineID, next)
	return s.view.Clone(), nil
}

// scheduleLocked records the newest desired quantity and (re)starts the
// quiescence timer. While a call is in flight no timer runs; commit
// resolution starts a fresh cycle if the desire moved on.
func (s *Synchronizer) scheduleLocked(lineID string, desired int) {
	pe := s.pending[lineID]
	if pe == nil {
		pe = &pendingEdit{}
		s.pending[lineID] = pe
	}
	pe.desired = desired
	if pe.inFlight {
		return
	}
	if pe.timer != nil {
		pe.timer.Stop()
	}
	pe.timer = time.AfterFunc(s.cfg.QuiesceWindow, func() { s.commit(lineID) })
}

func (s *Synchronizer) commit(lineID string) {
	s.mu.Lock()
	pe := s.pending[lineID]
	if pe == nil || pe.inFlight {
		s.mu.Unlock()
		return
	}
	pe.timer = nil
	pe.inFlight = true
	pe.sent = pe.desired
	sent := pe.sent
	token := s.token
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CommitTimeout)
	defer cancel()
	err := s.store.SetQuantity(ctx, token, s.accountID, lineID, sent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[lineID] != pe {
		// the line was removed while the call was in flight; its
		// outcome no longer matters
		return
	}
	pe.inFlight = false

	if err != nil {
		if i := s.view.Line(lineID); i >= 0 {
			if good, ok := s.lastGood[lineID]; ok {
				s.view.Lines[i] = good
			}
			s.view.Recompute()
		}
		delete(s.pending, lineID)
		if errors.Is(err, upstream.ErrAuthExpired) {
			s.clearLocked()
			s.notifyAuthExpired()
			return
		}
		s.log.Warn("cart commit failed, line rolled back",
			zap.Int64("account_id", s.accountID),
			zap.String("line_id", lineID),
			zap.Error(err))
		s.notices = append(s.notices, Notice{LineID: lineID, Err: err})
		return
	}

	// the store now holds pe.sent; that is the new known-good state
	if good, ok := s.lastGood[lineID]; ok {
		good.Quantity = pe.sent
		s.lastGood[lineID] = good
	} else if i := s.view.Line(lineID); i >= 0 {
		good := s.view.Lines[i]
		good.Quantity = pe.sent
		s.lastGood[lineID] = good
	}

	if pe.desired != pe.sent {
		pe.timer = time.AfterFunc(s.cfg.QuiesceWindow, func() { s.commit(lineID) })
		return
	}
	delete(s.pending, lineID)
}

// Remove deletes the line optimistically and issues the removal request
// immediately, without debouncing.
func (s *Synchronizer) Remove(ctx context.Context, lineID string) (domain.CartView, error) {
	s.mu.Lock()
	i := s.view.Line(lineID)
	if i < 0 {
		view := s.view.Clone()
		s.mu.Unlock()
		return view, ErrLineNotFound
	}
	removed := s.view.Lines[i]
	position := i
	s.view.Lines = append(s.view.Lines[:i], s.view.Lines[i+1:]...)
	s.view.Recompute()
	if pe := s.pending[lineID]; pe != nil {
		if pe.timer != nil {
			pe.timer.Stop()
		}
		delete(s.pending, lineID)
	}
	token := s.token
	s.mu.Unlock()

	err := s.store.Remove(ctx, token, s.accountID, lineID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, upstream.ErrAuthExpired) {
			s.clearLocked()
			s.notifyAuthExpired()
			return s.view.Clone(), upstream.ErrAuthExpired
		}
		// put the line back where it was
		if position > len(s.view.Lines) {
			position = len(s.view.Lines)
		}
		s.view.Lines = append(s.view.Lines[:position],
			append([]domain.CartLine{removed}, s.view.Lines[position:]...)...)
		s.view.Recompute()
		return s.view.Clone(), fmt.Errorf("remove line: %w", err)
	}
	delete(s.lastGood, lineID)
	return s.view.Clone(), nil
}

// Clear drops the local view and every pending edit. Used after a
// cash-on-delivery order (the store already emptied the cart), after a
// paid gateway order, and on logout. No network call.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Synchronizer) clearLocked() {
	for _, pe := range s.pending {
		if pe.timer != nil {
			pe.timer.Stop()
		}
	}
	s.pending = make(map[string]*pendingEdit)
	s.lastGood = make(map[string]domain.CartLine)
	s.view = domain.CartView{}
	s.view.Recompute()
}

func (s *Synchronizer) notifyAuthExpired() {
	if s.onAuthExpired != nil {
		go s.onAuthExpired()
	}
}
