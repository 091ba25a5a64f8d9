package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondStoreError relays an upstream store failure. The store's own
// status and message pass through; transport-level failures become 502.
func respondStoreError(w http.ResponseWriter, err error) {
	var storeErr *upstream.StoreError
	if errors.As(err, &storeErr) && storeErr.StatusCode >= 400 {
		respondError(w, storeErr.StatusCode, "store_error", storeErr.Message)
		return
	}
	respondError(w, http.StatusBadGateway, "service_unavailable", "upstream service unavailable")
}
