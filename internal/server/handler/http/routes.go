// Package http provides HTTP routing and middleware configuration
// for the IdentityGrid service.
package http

import (
	"net/http"

	"github.com/atinyakov/IdentityGrid/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the IdentityGrid API.
//
// Routes:
//
//	GET    /api/accounts              → accountHandler.List
//	POST   /api/accounts              → accountHandler.Create
//	DELETE /api/accounts              → accountHandler.Clear
//	GET    /api/accounts/{id}         → accountHandler.Get
//	PATCH  /api/accounts/{id}         → accountHandler.Patch
//	DELETE /api/accounts/{id}         → accountHandler.Delete
//	GET    /api/accounts/{id}/form    → accountHandler.Form
//	PUT    /api/accounts/{id}/form    → accountHandler.Submit
//	POST   /api/validate              → accountHandler.Validate
//	POST   /api/labels/parse          → ParseLabels
//	POST   /api/labels/stringify      → StringifyLabels
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json"): rejects non-JSON bodies
//  2. WithRequestLogging(logger): logs served requests
//  3. Recoverer: turns panics into 500s
func NewRouter(accountHandler *AccountHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountHandler.List)
			r.Post("/", accountHandler.Create)
			r.Delete("/", accountHandler.Clear)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", accountHandler.Get)
				r.Patch("/", accountHandler.Patch)
				r.Delete("/", accountHandler.Delete)
				r.Get("/form", accountHandler.Form)
				r.Put("/form", accountHandler.Submit)
			})
		})

		r.Post("/validate", accountHandler.Validate)
		r.Post("/labels/parse", ParseLabels)
		r.Post("/labels/stringify", StringifyLabels)
	})

	return r
}
