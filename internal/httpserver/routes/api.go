package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pathways/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pathways/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/pathways", handlers.ListPathways(d))
		r.Get("/pathways/{id}", handlers.GetPathway(d))
		r.Delete("/pathways/{id}", handlers.DeletePathway(d))

		if d.Notices != nil {
			r.Get("/notifications", handlers.Notifications(d))
		}

		// Commit is an operator action, so it sits behind the CIDR allow-list.
		r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
			Post("/commit", handlers.Commit(d))
	})
}
