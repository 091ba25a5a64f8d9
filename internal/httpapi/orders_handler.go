package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

// ListOrders returns the signed-in account's order history.
func (a *API) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	orders, err := a.orders.ListByAccount(ctx, sess.Token, sess.AccountID)
	if err != nil {
		if errors.Is(err, upstream.ErrAuthExpired) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// Logout tears the session down. The local cart and session go away even
// when the remote logout fails.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	a.carts.Drop(sess.AccountID)
	a.sessions.Invalidate(ctx, sess)

	w.WriteHeader(http.StatusNoContent)
}
