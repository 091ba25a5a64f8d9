// Package payment turns unauthenticated gateway callbacks into a final
// order outcome. The callback parameters are never interpreted locally
// beyond presence checks; signature verification and the authoritative
// verdict belong to the Order Record Store.
package payment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/session"
)

// ErrMalformedCallback means the callback is missing one of the
// parameters every genuine gateway redirect carries. Raised before any
// network call.
var ErrMalformedCallback = errors.New("callback missing required gateway parameters")

// Verifier relays callback parameters to the store for signature
// verification and returns its verdict.
type Verifier interface {
	VerifyCallback(ctx context.Context, params map[string]string) (domain.CallbackVerdict, error)
}

// PendingStore holds the resumption records written at checkout time.
type PendingStore interface {
	PendingOrder(ctx context.Context, orderID string) (session.PendingOrder, error)
	ClearPendingOrder(ctx context.Context, orderID string) error
}

// CartClearer empties an account's local cart after a confirmed payment.
type CartClearer interface {
	ClearAccount(accountID int64)
}

// Outcome is what the post-payment page renders.
type Outcome struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
	Message string             `json:"message"`
}

type Reconciler struct {
	verifier Verifier
	pending  PendingStore
	carts    CartClearer
	log      *zap.Logger
}

func NewReconciler(verifier Verifier, pending PendingStore, carts CartClearer, log *zap.Logger) *Reconciler {
	return &Reconciler{
		verifier: verifier,
		pending:  pending,
		carts:    carts,
		log:      log,
	}
}

// Reconcile resolves a gateway callback to a terminal outcome. The
// params map is forwarded to the store verbatim. Replays of an
// already-handled callback resolve to the same outcome; the side
// effects (pending-order cleanup, cart clearing) only fire once because
// the resumption record is gone on the second pass.
func (r *Reconciler) Reconcile(ctx context.Context, params map[string]string) (Outcome, error) {
	orderID := params["vnp_TxnRef"]
	code := params["vnp_ResponseCode"]
	if orderID == "" || code == "" || params["vnp_SecureHash"] == "" {
		return Outcome{}, ErrMalformedCallback
	}

	verdict, err := r.verifier.VerifyCallback(ctx, params)
	if err != nil {
		// The verdict is unknowable right now. The shopper cannot act
		// on a retry loop, so this resolves as a failure rather than
		// surfacing a transport error.
		r.log.Warn("callback verification unreachable",
			zap.String("order_id", orderID),
			zap.Error(err))
		r.clearPending(ctx, orderID)
		return Outcome{OrderID: orderID, Status: domain.OrderStatusFailed, Message: msgGenericFailure}, nil
	}

	if verdict.Status == domain.VerdictSuccess {
		r.settlePaid(ctx, orderID)
		return Outcome{OrderID: orderID, Status: domain.OrderStatusPaid, Message: msgPaid}, nil
	}

	status := domain.OrderStatusFailed
	if code == codeShopperCancelled {
		status = domain.OrderStatusCancelled
	}

	message := responseMessages[code]
	if message == "" {
		message = verdict.Message
	}
	if message == "" {
		message = msgGenericFailure
	}

	r.log.Info("gateway payment not completed",
		zap.String("order_id", orderID),
		zap.String("response_code", code),
		zap.String("status", string(status)))
	r.clearPending(ctx, orderID)
	return Outcome{OrderID: orderID, Status: status, Message: message}, nil
}

// settlePaid clears the resumption record and the account's cart. Both
// are cleanup; a confirmed payment never fails because of them.
func (r *Reconciler) settlePaid(ctx context.Context, orderID string) {
	pending, err := r.pending.PendingOrder(ctx, orderID)
	switch {
	case errors.Is(err, session.ErrNoPendingOrder):
		// replayed callback, cleanup already happened
		return
	case err != nil:
		r.log.Warn("pending order lookup failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}

	r.carts.ClearAccount(pending.AccountID)
	r.clearPending(ctx, orderID)
	r.log.Info("payment confirmed",
		zap.String("order_id", orderID),
		zap.Int64("account_id", pending.AccountID),
		zap.Int64("amount", pending.Amount))
}

func (r *Reconciler) clearPending(ctx context.Context, orderID string) {
	if err := r.pending.ClearPendingOrder(ctx, orderID); err != nil {
		r.log.Warn("pending order cleanup failed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
