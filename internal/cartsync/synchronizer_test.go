package cartsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

type quantityCall struct {
	lineID   string
	quantity int
}

// remoteCartMock implements RemoteCart and records every call.
type remoteCartMock struct {
	mu          sync.Mutex
	lines       []domain.CartLine
	listErr     error
	setErr      error
	removeErr   error
	setCalls    []quantityCall
	removeCalls []string

	// when non-nil, SetQuantity blocks until released
	setStarted chan struct{}
	setRelease chan struct{}
}

func (m *remoteCartMock) List(_ context.Context, _ string, _ int64) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	lines := make([]domain.CartLine, len(m.lines))
	copy(lines, m.lines)
	return lines, nil
}

func (m *remoteCartMock) SetQuantity(_ context.Context, _ string, _ int64, lineID string, quantity int) error {
	if m.setStarted != nil {
		m.setStarted <- struct{}{}
		<-m.setRelease
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls = append(m.setCalls, quantityCall{lineID: lineID, quantity: quantity})
	return m.setErr
}

func (m *remoteCartMock) Remove(_ context.Context, _ string, _ int64, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls = append(m.removeCalls, lineID)
	return m.removeErr
}

func (m *remoteCartMock) quantityCalls() []quantityCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]quantityCall, len(m.setCalls))
	copy(calls, m.setCalls)
	return calls
}

func newTestSync(t *testing.T, mock *remoteCartMock) *Synchronizer {
	t.Helper()
	cfg := Config{QuiesceWindow: 25 * time.Millisecond, CommitTimeout: time.Second}
	return NewSynchronizer(7, "tok", mock, cfg, zap.NewNop(), nil)
}

func oneLineCart() []domain.CartLine {
	return []domain.CartLine{
		{LineID: "l1", ProductID: 42, UnitPrice: 100000, Quantity: 1,
			Product: domain.ProductSnapshot{Name: "Serum dưỡng da"}},
	}
}

func TestLoad_ReplacesViewAndRecomputesTotals(t *testing.T) {
	mock := &remoteCartMock{lines: []domain.CartLine{
		{LineID: "l1", ProductID: 42, UnitPrice: 100000, Quantity: 2},
		{LineID: "l2", ProductID: 9, UnitPrice: 50000, Quantity: 3},
	}}
	s := newTestSync(t, mock)

	require.NoError(t, s.Load(context.Background()))

	view := s.View()
	assert.Equal(t, 2, view.LineCount)
	assert.Equal(t, 5, view.ItemCount)
	assert.Equal(t, int64(350000), view.AmountTotal)
}

func TestLoad_AuthExpiredClearsAndNotifies(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	expired := make(chan struct{})
	s.onAuthExpired = func() { close(expired) }

	mock.mu.Lock()
	mock.listErr = upstream.ErrAuthExpired
	mock.mu.Unlock()

	err := s.Load(context.Background())

	assert.ErrorIs(t, err, upstream.ErrAuthExpired)
	assert.True(t, s.View().IsEmpty())
	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("auth-expired callback never fired")
	}
}

func TestLoad_TransientErrorEmptiesView(t *testing.T) {
	mock := &remoteCartMock{listErr: errors.New("network down")}
	s := newTestSync(t, mock)

	err := s.Load(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, upstream.ErrAuthExpired)
	assert.True(t, s.View().IsEmpty())
}

// Three rapid increments on a quantity-1 line must coalesce into exactly
// one request carrying quantity 4.
func TestIncrement_CoalescesRapidEdits(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	for i := 0; i < 3; i++ {
		_, err := s.Increment("l1")
		require.NoError(t, err)
	}

	view := s.View()
	assert.Equal(t, 4, view.Lines[0].Quantity, "optimistic quantity applies immediately")
	assert.Equal(t, int64(400000), view.AmountTotal)

	require.Eventually(t, func() bool {
		return len(mock.quantityCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	calls := mock.quantityCalls()
	assert.Equal(t, quantityCall{lineID: "l1", quantity: 4}, calls[0])

	// nothing further arrives after quiescence
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, mock.quantityCalls(), 1)
}

func TestIncrement_FiveEditsOneCommit(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	for i := 0; i < 5; i++ {
		_, err := s.Increment("l1")
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return len(mock.quantityCalls()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 6, mock.quantityCalls()[0].quantity)
}

func TestDecrement_ClampsAtOne(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	view, err := s.Decrement("l1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Lines[0].Quantity)

	// the no-op schedules nothing
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, mock.quantityCalls())
}

func TestCommitFailure_RollsBackToLastKnownGood(t *testing.T) {
	mock := &remoteCartMock{lines: []domain.CartLine{
		{LineID: "l1", ProductID: 42, UnitPrice: 100000, Quantity: 2},
		{LineID: "l2", ProductID: 9, UnitPrice: 50000, Quantity: 1},
	}}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	mock.mu.Lock()
	mock.setErr = errors.New("store unavailable")
	mock.mu.Unlock()

	_, err := s.Increment("l1")
	require.NoError(t, err)
	_, err = s.Increment("l1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(mock.quantityCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return s.View().Lines[0].Quantity == 2
	}, time.Second, 5*time.Millisecond)

	view := s.View()
	assert.Equal(t, 2, view.Lines[0].Quantity, "rolled back to server state, not one step")
	assert.Equal(t, 1, view.Lines[1].Quantity, "other lines untouched")
	assert.Equal(t, int64(250000), view.AmountTotal)

	notices := s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "l1", notices[0].LineID)
	assert.Empty(t, s.Notices(), "notices drain once")
}

func TestIntentDuringInFlightCommitStartsFreshCycle(t *testing.T) {
	mock := &remoteCartMock{
		lines:      oneLineCart(),
		setStarted: make(chan struct{}, 2),
		setRelease: make(chan struct{}),
	}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Increment("l1") // desired 2
	require.NoError(t, err)

	// wait for the commit to be on the wire, then edit again
	select {
	case <-mock.setStarted:
	case <-time.After(time.Second):
		t.Fatal("first commit never started")
	}
	_, err = s.Increment("l1") // desired 3, must not cancel the in-flight call
	require.NoError(t, err)

	close(mock.setRelease)
	select {
	case <-mock.setStarted: // second commit after a fresh debounce
	case <-time.After(time.Second):
		t.Fatal("superseding intent was never committed")
	}

	require.Eventually(t, func() bool {
		return len(mock.quantityCalls()) == 2
	}, time.Second, 5*time.Millisecond)

	calls := mock.quantityCalls()
	assert.Equal(t, 2, calls[0].quantity)
	assert.Equal(t, 3, calls[1].quantity)
}

func TestRemove_OptimisticWithImmediateRequest(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	view, err := s.Remove(context.Background(), "l1")

	require.NoError(t, err)
	assert.True(t, view.IsEmpty())
	assert.Equal(t, []string{"l1"}, mock.removeCalls)
}

func TestRemove_FailureRestoresLine(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart(), removeErr: errors.New("store unavailable")}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	view, err := s.Remove(context.Background(), "l1")

	require.Error(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "l1", view.Lines[0].LineID)
	assert.Equal(t, int64(100000), view.AmountTotal)
}

func TestRemove_CancelsPendingCommit(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Increment("l1")
	require.NoError(t, err)
	_, err = s.Remove(context.Background(), "l1")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, mock.quantityCalls(), "debounced commit of a removed line must not fire")
}

func TestLoad_KeepsOptimisticQuantityOverSnapshot(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := NewSynchronizer(7, "tok", mock,
		Config{QuiesceWindow: time.Hour, CommitTimeout: time.Second}, zap.NewNop(), nil)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Increment("l1") // desired 2, commit parked behind a long window
	require.NoError(t, err)

	// a navigation-triggered reload returns the stale server quantity
	require.NoError(t, s.Load(context.Background()))

	view := s.View()
	assert.Equal(t, 2, view.Lines[0].Quantity, "pending edit survives the reload")
	assert.Equal(t, int64(200000), view.AmountTotal)
}

func TestClear_DropsViewAndPendingEdits(t *testing.T) {
	mock := &remoteCartMock{lines: oneLineCart()}
	s := newTestSync(t, mock)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Increment("l1")
	require.NoError(t, err)
	s.Clear()

	assert.True(t, s.View().IsEmpty())
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, mock.quantityCalls())
}

func TestRegistry_SingleSynchronizerPerAccount(t *testing.T) {
	mock := &remoteCartMock{}
	reg := NewRegistry(mock, Config{QuiesceWindow: time.Millisecond}, zap.NewNop(), nil)

	a := reg.For(7, "tok-1")
	b := reg.For(7, "tok-2")
	other := reg.For(8, "tok-3")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)

	reg.Drop(7)
	c := reg.For(7, "tok-4")
	assert.NotSame(t, a, c)
}
