package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/maynagashev/brewtrack/internal/metrics"
	appmiddleware "github.com/maynagashev/brewtrack/internal/middleware"
)

const corsMaxAge = 300

// RouterOptions - зависимости HTTP-маршрутов.
type RouterOptions struct {
	Brew  *BrewHandler
	Admin *AdminHandler
	// AdminSecret - ключ HS256 для /brew/admin. Пустой ключ отключает админские маршруты.
	AdminSecret    []byte
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	// Health - хранилище для GET /health. nil отключает маршрут.
	Health Pinger
}

// NewRouter настраивает и возвращает роутер chi.
func NewRouter(opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(appmiddleware.Metrics(opts.Metrics))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         corsMaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Маршрут не найден")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Метод не поддерживается")
	})

	// --- Маршруты --- //
	r.Get("/", Index)
	r.Get("/ping", Ping)
	if opts.Health != nil {
		r.Get("/health", Health(opts.Health))
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/brew", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/track/{project}/{filename}", opts.Brew.Track)
		r.Get("/stats", opts.Brew.Stats)

		// Администраторские маршруты (требуют JWT)
		if opts.Admin != nil && len(opts.AdminSecret) > 0 {
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Authenticator(opts.AdminSecret))
				r.Post("/admin/snapshots", opts.Admin.PublishSnapshot)
			})
		}
	})

	return r
}
