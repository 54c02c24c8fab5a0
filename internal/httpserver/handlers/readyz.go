package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz answers 503 until the store has opened, and for good once the
// open has failed.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-d.Readiness.Ready():
		default:
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}

		if err := d.Readiness.Err(); err != nil {
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, readyzResponse{Ready: true})
	}
}
