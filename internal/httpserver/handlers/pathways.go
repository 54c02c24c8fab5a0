package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
)

func ListPathways(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathways, err := d.Pathways.GetPathways(r.Context())
		if err != nil {
			writeStoreError(w, d.Logger, err)
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, pathways)
	}
}

func GetPathway(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, found, err := d.Pathways.GetPathway(r.Context(), id)
		if err != nil {
			writeStoreError(w, d.Logger, err)
			return
		}
		if !found {
			writeError(w, d.Logger, http.StatusNotFound, "pathway not found")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, p)
	}
}

// DeletePathway answers 204 whether or not the id existed.
func DeletePathway(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Pathways.DeletePathway(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
