// Package http provides the localhost delivery layer for the dashboard UI.
// It exposes the session and link controllers as a JSON API, validating
// input before it ever reaches the backend.
package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
)

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the dashboard API.
func NewRouter(
	logger *httplog.Logger,
	auth authGateway,
	sess sessionController,
	links linkController,
	flags flagStore,
	copiedTTL time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		validate := newValidate()

		r.Get("/ping", handlePing)

		ah := newAuthHandler(auth, sess, validate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", ah.register)
			r.Post("/login", ah.login)
			r.Post("/logout", ah.logout)
		})

		r.Get("/session", ah.getSession)

		lh := newLinkHandler(links, sess, flags, copiedTTL, validate)

		r.Route("/links", func(r chi.Router) {
			r.Get("/", lh.listLinks)
			r.Post("/", lh.createLink)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", lh.deleteLink)
				r.Post("/copied", lh.markCopied)
			})
		})

		r.Get("/alias", lh.suggestAlias)
	})

	return r
}
