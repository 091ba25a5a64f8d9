package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/session"
)

type verifierMock struct {
	verdict domain.CallbackVerdict
	err     error
	calls   int
	got     map[string]string
}

func (v *verifierMock) VerifyCallback(_ context.Context, params map[string]string) (domain.CallbackVerdict, error) {
	v.calls++
	v.got = params
	return v.verdict, v.err
}

type pendingStoreMock struct {
	records map[string]session.PendingOrder
	cleared []string
}

func newPendingStoreMock(records ...session.PendingOrder) *pendingStoreMock {
	m := &pendingStoreMock{records: map[string]session.PendingOrder{}}
	for _, r := range records {
		m.records[r.OrderID] = r
	}
	return m
}

func (p *pendingStoreMock) PendingOrder(_ context.Context, orderID string) (session.PendingOrder, error) {
	rec, ok := p.records[orderID]
	if !ok {
		return session.PendingOrder{}, session.ErrNoPendingOrder
	}
	return rec, nil
}

func (p *pendingStoreMock) ClearPendingOrder(_ context.Context, orderID string) error {
	delete(p.records, orderID)
	p.cleared = append(p.cleared, orderID)
	return nil
}

type cartClearerMock struct {
	cleared []int64
}

func (c *cartClearerMock) ClearAccount(accountID int64) {
	c.cleared = append(c.cleared, accountID)
}

func callbackParams(code string) map[string]string {
	return map[string]string{
		"vnp_TxnRef":       "ord-9",
		"vnp_ResponseCode": code,
		"vnp_SecureHash":   "deadbeef",
		"vnp_Amount":       "40000000",
	}
}

func newTestReconciler(v *verifierMock, p *pendingStoreMock, c *cartClearerMock) *Reconciler {
	return NewReconciler(v, p, c, zap.NewNop())
}

func TestReconcile_Paid(t *testing.T) {
	verifier := &verifierMock{verdict: domain.CallbackVerdict{Status: domain.VerdictSuccess}}
	pending := newPendingStoreMock(session.PendingOrder{OrderID: "ord-9", AccountID: 7, Amount: 400000})
	carts := &cartClearerMock{}
	r := newTestReconciler(verifier, pending, carts)

	outcome, err := r.Reconcile(context.Background(), callbackParams("00"))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, outcome.Status)
	assert.Equal(t, "ord-9", outcome.OrderID)
	assert.Equal(t, "Thanh toán thành công! Cảm ơn bạn đã mua hàng.", outcome.Message)

	assert.Equal(t, []int64{7}, carts.cleared)
	assert.Equal(t, []string{"ord-9"}, pending.cleared)
	// params reach the verifier verbatim, opaque ones included
	assert.Equal(t, "40000000", verifier.got["vnp_Amount"])
}

// Shopper-cancelled at the gateway: code 24 resolves to CANCELLED, not
// FAILED, with the dedicated message.
func TestReconcile_ShopperCancelled(t *testing.T) {
	verifier := &verifierMock{verdict: domain.CallbackVerdict{Status: "FAILED"}}
	pending := newPendingStoreMock(session.PendingOrder{OrderID: "ord-9", AccountID: 7})
	carts := &cartClearerMock{}
	r := newTestReconciler(verifier, pending, carts)

	outcome, err := r.Reconcile(context.Background(), callbackParams("24"))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, outcome.Status)
	assert.Equal(t, "Quý khách đã hủy giao dịch", outcome.Message)

	assert.Empty(t, carts.cleared, "cart stays intact so the shopper can retry")
	assert.Equal(t, []string{"ord-9"}, pending.cleared)
}

func TestReconcile_FailureCodeTable(t *testing.T) {
	tests := []struct {
		code    string
		wantMsg string
	}{
		{"11", "Đã hết hạn chờ thanh toán. Vui lòng thực hiện lại giao dịch."},
		{"12", "Thẻ/Tài khoản bị khóa"},
		{"51", "Tài khoản không đủ số dư để thực hiện giao dịch"},
		{"65", "Tài khoản đã vượt quá hạn mức giao dịch trong ngày"},
		{"79", "Nhập sai mật khẩu thanh toán quá số lần quy định"},
		{"97", "Chữ ký không hợp lệ"},
		{"99", "Lỗi không xác định, vui lòng liên hệ hỗ trợ"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			verifier := &verifierMock{verdict: domain.CallbackVerdict{Status: "FAILED"}}
			r := newTestReconciler(verifier, newPendingStoreMock(), &cartClearerMock{})

			outcome, err := r.Reconcile(context.Background(), callbackParams(tt.code))

			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusFailed, outcome.Status)
			assert.Equal(t, tt.wantMsg, outcome.Message)
		})
	}
}

func TestReconcile_UnknownCodeFallsBackToVerdictMessage(t *testing.T) {
	verifier := &verifierMock{verdict: domain.CallbackVerdict{Status: "FAILED", Message: "Ngân hàng từ chối giao dịch"}}
	r := newTestReconciler(verifier, newPendingStoreMock(), &cartClearerMock{})

	outcome, err := r.Reconcile(context.Background(), callbackParams("42"))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, outcome.Status)
	assert.Equal(t, "Ngân hàng từ chối giao dịch", outcome.Message)
}

func TestReconcile_UnknownCodeNoVerdictMessage(t *testing.T) {
	verifier := &verifierMock{verdict: domain.CallbackVerdict{Status: "FAILED"}}
	r := newTestReconciler(verifier, newPendingStoreMock(), &cartClearerMock{})

	outcome, err := r.Reconcile(context.Background(), callbackParams("42"))

	require.NoError(t, err)
	assert.Equal(t, "Thanh toán không thành công. Vui lòng thử lại.", outcome.Message)
}

// A forged or truncated callback never reaches the store.
func TestReconcile_MalformedCallback(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
	}{
		{"empty", map[string]string{}},
		{"missing signature", map[string]string{"vnp_TxnRef": "ord-9", "vnp_ResponseCode": "00"}},
		{"missing ref", map[string]string{"vnp_ResponseCode": "00", "vnp_SecureHash": "x"}},
		{"missing code", map[string]string{"vnp_TxnRef": "ord-9", "vnp_SecureHash": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &verifierMock{}
			pending := newPendingStoreMock(session.PendingOrder{OrderID: "ord-9", AccountID: 7})
			r := newTestReconciler(verifier, pending, &cartClearerMock{})

			_, err := r.Reconcile(context.Background(), tt.params)

			assert.ErrorIs(t, err, ErrMalformedCallback)
			assert.Zero(t, verifier.calls)
			assert.Empty(t, pending.cleared)
		})
	}
}

// Verification unreachable: the shopper gets a failure outcome, not a
// transport error.
func TestReconcile_VerifierUnreachable(t *testing.T) {
	verifier := &verifierMock{err: errors.New("connection refused")}
	pending := newPendingStoreMock(session.PendingOrder{OrderID: "ord-9", AccountID: 7})
	carts := &cartClearerMock{}
	r := newTestReconciler(verifier, pending, carts)

	outcome, err := r.Reconcile(context.Background(), callbackParams("00"))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, outcome.Status)
	assert.Equal(t, "Thanh toán không thành công. Vui lòng thử lại.", outcome.Message)
	assert.Empty(t, carts.cleared)
}

// Replaying a success callback resolves to the same outcome but fires
// the side effects only once.
func TestReconcile_ReplayIsIdempotent(t *testing.T) {
	verifier := &verifierMock{verdict: domain.CallbackVerdict{Status: domain.VerdictSuccess}}
	pending := newPendingStoreMock(session.PendingOrder{OrderID: "ord-9", AccountID: 7})
	carts := &cartClearerMock{}
	r := newTestReconciler(verifier, pending, carts)

	first, err := r.Reconcile(context.Background(), callbackParams("00"))
	require.NoError(t, err)
	second, err := r.Reconcile(context.Background(), callbackParams("00"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int64{7}, carts.cleared, "cart cleared exactly once")
	assert.Equal(t, []string{"ord-9"}, pending.cleared)
}
