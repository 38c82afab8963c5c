package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/wsupload/service/internal/history"
	appMiddleware "github.com/wsupload/service/internal/middleware"
	"github.com/wsupload/service/internal/response"
)

// routerDeps are the handlers mounted by newRouter. history and verifier are
// optional features and may be nil.
type routerDeps struct {
	relay          http.Handler
	history        *history.Handler
	verifier       appMiddleware.TokenVerifier
	metrics        http.Handler
	allowedOrigins []string
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Status(w, http.StatusOK, "ok")
	})

	if d.metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.metrics)
	}

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Upload socket
	r.Group(func(r chi.Router) {
		if d.verifier != nil {
			r.Use(appMiddleware.RequireToken(d.verifier))
		}
		r.Method(http.MethodGet, "/ws", d.relay)
	})

	if d.history != nil {
		r.Route("/api/v1", func(r chi.Router) {
			if d.verifier != nil {
				r.Use(appMiddleware.RequireToken(d.verifier))
			}
			r.Get("/uploads", d.history.List)
		})
	}

	return r
}
