// Package http provides the HTTP delivery layer for the URL shortener service.
// It exposes the create, resolve, health and greeting endpoints and maps
// application errors onto status codes.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hashlink/url-shortener/docs"
)

// maxBodyBytes caps the size of a POST /generate body.
const maxBodyBytes = 100 << 10

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
// name is the subject of the greeting served on the root path.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, name string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	h := newURLHandler(urlUseCase, validator.New())

	r.Get("/", handleGreeting(name))
	r.Get("/health", handleHealth)
	r.With(middleware.RequestSize(maxBodyBytes)).Post("/generate", h.generate)
	r.Get("/{shortURL}", h.redirect)

	return r
}
