package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DungK5UIT/Beauty-Store/internal/checkout"
	"github.com/DungK5UIT/Beauty-Store/internal/domain"
	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

type CheckoutRequestDTO struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	City          string `json:"city"`
	District      string `json:"district"`
	Note          string `json:"note"`
	PaymentMethod string `json:"payment_method"`
}

// PlaceOrder runs the checkout flow against the current cart view.
func (a *API) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	shipping := domain.ShippingInfo{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		City:     req.City,
		District: req.District,
		Note:     req.Note,
	}

	sync := a.carts.For(sess.AccountID, sess.Token)
	result, err := a.checkout.PlaceOrder(ctx, sess, sync, shipping, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		a.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (a *API) respondCheckoutError(w http.ResponseWriter, err error) {
	var ve *checkout.ValidationError
	switch {
	case errors.Is(err, upstream.ErrAuthExpired):
		respondError(w, http.StatusUnauthorized, "unauthorized", "session expired")
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, "validation_failed", ve.Message)
	case errors.Is(err, checkout.ErrNotSignedIn):
		respondError(w, http.StatusUnauthorized, "unauthorized", checkout.Message(err))
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNoPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_request", checkout.Message(err))
	default:
		var storeErr *upstream.StoreError
		if errors.As(err, &storeErr) && storeErr.StatusCode >= 400 {
			respondError(w, storeErr.StatusCode, "store_error", storeErr.Message)
			return
		}
		respondError(w, http.StatusBadGateway, "submit_failed", checkout.Message(err))
	}
}
