package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// maxStorageBody bounds a /storage request body.
const maxStorageBody = 8 << 20

type keysRequest struct {
	Keys json.RawMessage `json:"keys"`
}

type itemsRequest struct {
	Items map[string]json.RawMessage `json:"items"`
}

// decodeBody reads JSON into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxStorageBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseKeys turns the raw keys value into nil, a string, a list or a
// defaults map.
func parseKeys(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var keys any
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// StorageGet serves the legacy get. Storage failures degrade to an empty
// object, never to an error status.
func StorageGet(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keysRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}
		keys, err := parseKeys(req.Keys)
		if err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid keys")
			return
		}

		results := make(chan map[string]any, 1)
		d.Storage.Get(keys, func(result map[string]any) { results <- result })

		select {
		case result := <-results:
			writeJSON(w, d.Logger, http.StatusOK, result)
		case <-r.Context().Done():
			d.Logger.Debug("client went away during storage get", logger.Error(r.Context().Err()))
		}
	}
}

// StorageSet serves the legacy set: 204 once the write has been attempted.
func StorageSet(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemsRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}

		items := make(map[string]any, len(req.Items))
		for k, v := range req.Items {
			items[k] = v
		}
		waitFor(w, r, d, func(done func()) { d.Storage.Set(items, done) })
	}
}

func StorageRemove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keysRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}
		keys, err := parseKeys(req.Keys)
		if err != nil || keys == nil {
			writeError(w, d.Logger, http.StatusBadRequest, "keys must be a string or a list of strings")
			return
		}
		waitFor(w, r, d, func(done func()) { d.Storage.Remove(keys, done) })
	}
}

func StorageClear(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		waitFor(w, r, d, func(done func()) { d.Storage.Clear(done) })
	}
}

// waitFor starts a callback-style call and answers 204 when it completes.
func waitFor(w http.ResponseWriter, r *http.Request, d deps.Deps, call func(done func())) {
	done := make(chan struct{})
	call(func() { close(done) })

	select {
	case <-done:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
		d.Logger.Debug("client went away during storage write", logger.Error(r.Context().Err()))
	}
}
