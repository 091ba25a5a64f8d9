package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/DungK5UIT/Beauty-Store/internal/payment"
)

// PaymentCallback resolves a gateway return redirect. Every query
// parameter is forwarded untouched; interpretation happens downstream.
func (a *API) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	outcome, err := a.payments.Reconcile(ctx, params)
	if err != nil {
		if errors.Is(err, payment.ErrMalformedCallback) {
			respondError(w, http.StatusBadRequest, "invalid_callback", "missing gateway parameters")
			return
		}
		respondError(w, http.StatusBadGateway, "service_unavailable", "callback verification unavailable")
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}
