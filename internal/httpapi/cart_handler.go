package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DungK5UIT/Beauty-Store/internal/cartsync"
	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

// CartResponse pairs the view with any background-commit failures that
// accumulated since the last request. Notices are delivered once.
type CartResponse struct {
	Cart    domain.CartView `json:"cart"`
	Notices []NoticeDTO     `json:"notices,omitempty"`
}

type NoticeDTO struct {
	LineID  string `json:"line_id"`
	Message string `json:"message"`
}

func (a *API) cartResponse(sync *cartsync.Synchronizer, view domain.CartView) CartResponse {
	resp := CartResponse{Cart: view}
	for _, n := range sync.Notices() {
		resp.Notices = append(resp.Notices, NoticeDTO{
			LineID:  n.LineID,
			Message: "Không thể cập nhật số lượng sản phẩm. Vui lòng thử lại.",
		})
	}
	return resp
}

// GetCart refreshes the view from the cart store and returns it.
func (a *API) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	sync := a.carts.For(sess.AccountID, sess.Token)

	if err := sync.Load(ctx); err != nil {
		if errors.Is(err, upstream.ErrAuthExpired) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, a.cartResponse(sync, sync.View()))
}

// IncrementLine bumps a line's quantity in the local view. The store
// catches up through the debounced commit.
func (a *API) IncrementLine(w http.ResponseWriter, r *http.Request) {
	a.adjustLine(w, r, (*cartsync.Synchronizer).Increment)
}

// DecrementLine lowers a line's quantity, never below one.
func (a *API) DecrementLine(w http.ResponseWriter, r *http.Request) {
	a.adjustLine(w, r, (*cartsync.Synchronizer).Decrement)
}

func (a *API) adjustLine(w http.ResponseWriter, r *http.Request, op func(*cartsync.Synchronizer, string) (domain.CartView, error)) {
	sess := sessionFrom(r.Context())
	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing line id")
		return
	}

	sync := a.carts.For(sess.AccountID, sess.Token)
	view, err := op(sync, lineID)
	if err != nil {
		if errors.Is(err, cartsync.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "cart line not found")
			return
		}
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, a.cartResponse(sync, view))
}

// RemoveLine deletes a line. Unlike quantity edits this is synchronous:
// the response reflects the store's answer.
func (a *API) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing line id")
		return
	}

	sync := a.carts.For(sess.AccountID, sess.Token)
	view, err := sync.Remove(ctx, lineID)
	if err != nil {
		switch {
		case errors.Is(err, cartsync.ErrLineNotFound):
			respondError(w, http.StatusNotFound, "not_found", "cart line not found")
		case errors.Is(err, upstream.ErrAuthExpired):
			respondError(w, http.StatusUnauthorized, "unauthorized", "session expired")
		default:
			respondStoreError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, a.cartResponse(sync, view))
}
