package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/chat"
	"github.com/wolfman30/bookline/internal/clients"
	httpmiddleware "github.com/wolfman30/bookline/internal/http/middleware"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ProvidersHandler    *providers.Handler
	ClientsHandler      *clients.Handler
	RoomsHandler        *rooms.Handler
	AppointmentsHandler *appointments.Handler
	ChatHandler         *chat.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"service":"bookline","status":"ok"}`)) //nolint:errcheck
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`)) //nolint:errcheck
	})

	r.Mount("/providers", cfg.ProvidersHandler.Routes())
	r.Mount("/clients", cfg.ClientsHandler.Routes())
	r.Mount("/rooms", cfg.RoomsHandler.Routes())
	r.Mount("/appointments", cfg.AppointmentsHandler.Routes())

	if cfg.ChatHandler != nil {
		r.Post("/chat", cfg.ChatHandler.HandleChat)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
