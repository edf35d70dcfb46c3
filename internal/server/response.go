package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"buyorder-alerts/internal/store"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondStoreError maps store sentinels to HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrSourceNotFound):
		respondError(w, http.StatusNotFound, "source not found")
	case errors.Is(err, store.ErrInvalidSource):
		respondError(w, http.StatusBadRequest, "name and url are required")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
