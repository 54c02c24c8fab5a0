package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// Commit triggers an immediate auto-commit.
func Commit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.CommitTrigger == nil {
			writeError(w, d.Logger, http.StatusNotFound, "auto-commit is disabled")
			return
		}

		select {
		case d.CommitTrigger <- struct{}{}:
			d.Logger.Info("manual commit triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Commit triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("commit already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Commit already pending, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}

func Notifications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, d.Notices.Recent())
	}
}
