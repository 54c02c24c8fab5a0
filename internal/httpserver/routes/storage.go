package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pathways/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pathways/internal/httpserver/mw"
)

func init() { Register(registerStorage) }

func registerStorage(r chi.Router, d deps.Deps) {
	r.Route("/storage", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateBurst,
			RefillPerIPPerMin: d.RatePerMin,
			MaxEntries:        10_000,
			TrustProxy:        d.TrustProxy,
			Logger:            d.Logger,
		}))

		r.Post("/get", handlers.StorageGet(d))
		r.Post("/set", handlers.StorageSet(d))
		r.Post("/remove", handlers.StorageRemove(d))
		r.Post("/clear", handlers.StorageClear(d))
	})
}
