// Package httpapi is the storefront's HTTP surface. Handlers stay thin:
// they translate requests into calls on the cart synchronizer, the
// checkout orchestrator and the payment reconciler, and translate their
// results back into JSON.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/cartsync"
	"github.com/DungK5UIT/Beauty-Store/internal/checkout"
	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/payment"
	"github.com/DungK5UIT/Beauty-Store/internal/session"
)

// OrderHistory is the read side of the order store the profile page needs.
type OrderHistory interface {
	ListByAccount(ctx context.Context, token string, accountID int64) ([]domain.Order, error)
}

type API struct {
	sessions *session.Manager
	carts    *cartsync.Registry
	checkout *checkout.Orchestrator
	payments *payment.Reconciler
	orders   OrderHistory
	timeout  time.Duration
	log      *zap.Logger
}

func NewAPI(
	sessions *session.Manager,
	carts *cartsync.Registry,
	orchestrator *checkout.Orchestrator,
	reconciler *payment.Reconciler,
	orders OrderHistory,
	timeout time.Duration,
	log *zap.Logger,
) *API {
	return &API{
		sessions: sessions,
		carts:    carts,
		checkout: orchestrator,
		payments: reconciler,
		orders:   orders,
		timeout:  timeout,
		log:      log,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(a.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// the gateway redirects the shopper's browser here without our
		// bearer token, so the callback route stays public
		r.Get("/pay/vnpay/callback", a.PaymentCallback)

		r.Group(func(r chi.Router) {
			r.Use(a.requireSession)

			r.Get("/cart", a.GetCart)
			r.Post("/cart/{lineID}/increment", a.IncrementLine)
			r.Post("/cart/{lineID}/decrement", a.DecrementLine)
			r.Delete("/cart/{lineID}", a.RemoveLine)

			r.Post("/checkout", a.PlaceOrder)
			r.Get("/orders", a.ListOrders)
			r.Post("/logout", a.Logout)
		})
	})

	return r
}
