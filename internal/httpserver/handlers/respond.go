package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, status int, msg string) {
	writeJSON(w, log, status, errorResponse{Error: msg})
}

// writeStoreError maps storage errors to a status code.
func writeStoreError(w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrStoreUnavailable):
		writeError(w, log, http.StatusServiceUnavailable, "store unavailable")
	case errors.Is(err, store.ErrSerialization):
		writeError(w, log, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error("storage request failed", logger.Error(err))
		writeError(w, log, http.StatusInternalServerError, "internal error")
	}
}
