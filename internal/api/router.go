// Package api serves the kitchen over a JSON REST interface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hammamikhairi/cooksync/internal/auth"
	"github.com/hammamikhairi/cooksync/internal/engine"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Option configures the router.
type Option func(*options)

type options struct {
	corsOrigins []string
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins ...string) Option {
	return func(o *options) {
		o.corsOrigins = origins
	}
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(kitchen *engine.Engine, authSvc *auth.Service, log *logger.Logger, opts ...Option) http.Handler {
	o := options{corsOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handler{kitchen: kitchen, auth: authSvc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.root)
		r.Get("/healthz", h.health)
		r.Post("/auth/google", h.signIn)

		r.Group(func(r chi.Router) {
			r.Use(authSvc.Middleware)

			r.Get("/auth/me", h.me)

			r.Route("/dishes", func(r chi.Router) {
				r.Get("/", h.listDishes)
				r.Post("/", h.createDish)
				r.Delete("/", h.clearDishes)
				r.Patch("/{id}", h.updateDishTime)
				r.Delete("/{id}", h.deleteDish)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.listTasks)
				r.Post("/", h.createTask)
				r.Delete("/", h.clearTasks)
				r.Patch("/{id}", h.updateTaskTime)
				r.Delete("/{id}", h.deleteTask)
			})

			r.Post("/cooking-plan/calculate", h.calculatePlan)
		})
	})

	return r
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				zl := log.Zerolog()
				zl.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
