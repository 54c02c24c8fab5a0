package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Backend  string `json:"backend,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Pathways *int   `json:"pathways,omitempty"`
	Error    string `json:"error,omitempty"`
}

type statusResponse struct {
	Components map[string]componentStatus `json:"components"`
}

// Status reports the store, redis and background jobs.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":      checkStore(r.Context(), d),
			"autocommit": jobStatus(d.CommitTrigger != nil),
			"linkaudit":  jobStatus(d.LinkAudit),
		}
		if d.RedisClient != nil {
			components["redis"] = checkRedis(r.Context(), d)
		}

		code := http.StatusOK
		if !components["store"].OK {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, d.Logger, code, statusResponse{Components: components})
	}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	st := componentStatus{Backend: d.Backend}

	select {
	case <-d.Readiness.Ready():
	default:
		st.Mode = "opening"
		return st
	}
	if err := d.Readiness.Err(); err != nil {
		st.Mode = "failed"
		st.Error = err.Error()
		return st
	}

	pathways, err := d.Pathways.GetPathways(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	n := len(pathways)
	st.OK = true
	st.Mode = "ready"
	st.Pathways = &n
	return st
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func jobStatus(enabled bool) componentStatus {
	if enabled {
		return componentStatus{OK: true, Mode: "enabled"}
	}
	return componentStatus{OK: true, Mode: "disabled"}
}
