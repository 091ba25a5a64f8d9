// Package checkout turns a synchronized cart plus shipping input into a
// submitted order and routes it to the chosen payment path.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/session"
	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

// CartSource is the slice of the synchronizer the orchestrator reads.
// It never mutates lines; Clear is the one permitted write, and only
// after the store confirmed a cash-on-delivery order.
type CartSource interface {
	View() domain.CartView
	Clear()
}

// OrderCreator submits orders to the Order Record Store.
type OrderCreator interface {
	Create(ctx context.Context, token string, req domain.OrderRequest) (domain.OrderReceipt, error)
}

// PendingRecorder persists the gateway resumption state before the
// browser navigates away.
type PendingRecorder interface {
	SetPendingOrder(ctx context.Context, pending session.PendingOrder) error
}

// ResultStatus tells the UI what to do next.
type ResultStatus string

const (
	// StatusConfirmed: the order is done from the client's point of
	// view (cash on delivery).
	StatusConfirmed ResultStatus = "CONFIRMED"
	// StatusRedirect: navigate the browser to RedirectURL.
	StatusRedirect ResultStatus = "REDIRECT"
	// StatusAwaitingTransfer: show the wallet reference and wait for a
	// manual transfer. No programmatic finalization exists.
	StatusAwaitingTransfer ResultStatus = "AWAITING_TRANSFER"
)

// WalletReference is the static MoMo payment slip: scan, pay the amount,
// mention the code.
type WalletReference struct {
	Amount int64  `json:"amount"`
	Code   string `json:"code"`
}

type Result struct {
	OrderID     string           `json:"order_id"`
	Status      ResultStatus     `json:"status"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Wallet      *WalletReference `json:"wallet,omitempty"`
}

type Orchestrator struct {
	orders   OrderCreator
	pending  PendingRecorder
	validate *validator.Validate
	log      *zap.Logger
}

func NewOrchestrator(orders OrderCreator, pending PendingRecorder, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		orders:   orders,
		pending:  pending,
		validate: newValidator(),
		log:      log,
	}
}

// PlaceOrder runs the precondition chain, submits the order and branches
// on the payment method. Preconditions short-circuit on the first
// failure and nothing touches the network until all of them pass. The
// cart is never cleared before an order is confirmed.
func (o *Orchestrator) PlaceOrder(ctx context.Context, sess *session.Session, cart CartSource, shipping domain.ShippingInfo, method domain.PaymentMethod) (*Result, error) {
	if sess == nil || sess.AccountID == 0 {
		return nil, ErrNotSignedIn
	}

	view := cart.View()
	if view.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if !method.Valid() {
		return nil, ErrNoPaymentMethod
	}

	if err := o.validateShipping(shipping); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, len(view.Lines))
	for i, l := range view.Lines {
		items[i] = domain.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	req := domain.OrderRequest{
		AccountID:       sess.AccountID,
		Items:           items,
		ShippingAddress: shipping.FlattenAddress(),
		PaymentMethod:   method,
		TotalAmount:     view.AmountTotal,
		Note:            shipping.Note,
		IdempotencyKey:  uuid.NewString(),
	}

	receipt, err := o.orders.Create(ctx, sess.Token, req)
	if err != nil {
		if errors.Is(err, upstream.ErrAuthExpired) {
			return nil, err
		}
		o.log.Warn("order submission failed",
			zap.Int64("account_id", sess.AccountID),
			zap.String("payment_method", string(method)),
			zap.Error(err))
		return nil, err
	}

	o.log.Info("order created",
		zap.String("order_id", receipt.OrderID),
		zap.Int64("account_id", sess.AccountID),
		zap.String("payment_method", string(method)),
		zap.Int64("total_amount", view.AmountTotal))

	switch method {
	case domain.PaymentCashOnDelivery:
		// the store already finalized the order; nothing left to pay
		cart.Clear()
		return &Result{OrderID: receipt.OrderID, Status: StatusConfirmed}, nil

	case domain.PaymentVNPay:
		// from here the browser leaves this process; the order id must
		// outlive it, so it goes to durable storage before we hand out
		// the redirect
		pending := session.PendingOrder{
			OrderID:   receipt.OrderID,
			AccountID: sess.AccountID,
			Amount:    view.AmountTotal,
		}
		if err := o.pending.SetPendingOrder(ctx, pending); err != nil {
			return nil, fmt.Errorf("persist pending order before handoff: %w", err)
		}
		return &Result{
			OrderID:     receipt.OrderID,
			Status:      StatusRedirect,
			RedirectURL: receipt.RedirectURL,
		}, nil

	default: // MoMo wallet
		return &Result{
			OrderID: receipt.OrderID,
			Status:  StatusAwaitingTransfer,
			Wallet: &WalletReference{
				Amount: view.AmountTotal,
				Code:   "MOMO-" + receipt.OrderID,
			},
		}, nil
	}
}
