package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/wolfman30/bookline/internal/api/router"
	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/chat"
	"github.com/wolfman30/bookline/internal/clients"
	appconfig "github.com/wolfman30/bookline/internal/config"
	"github.com/wolfman30/bookline/internal/observability/metrics"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
	"github.com/wolfman30/bookline/internal/store"
	"github.com/wolfman30/bookline/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Initialize repositories
	var (
		providerRepo providers.Repository
		clientRepo   clients.Repository
		roomRepo     rooms.Repository
		apptRepo     appointments.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		providerRepo = providers.NewRepository(pool)
		clientRepo = clients.NewRepository(pool)
		roomRepo = rooms.NewRepository(pool)
		apptRepo = appointments.NewRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		providerRepo = providers.NewInMemoryRepository()
		clientRepo = clients.NewInMemoryRepository()
		roomRepo = rooms.NewInMemoryRepository()
		apptRepo = appointments.NewInMemoryRepository()
	}
	validator := appointments.NewValidator(providerRepo, clientRepo, roomRepo, apptRepo)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(registry)

	// Conversational assistant
	var chatHandler *chat.Handler
	if cfg.OpenAIAPIKey != "" {
		var oracle chat.OracleClient = openai.NewClient(cfg.OpenAIAPIKey)
		if cfg.GeminiAPIKey != "" {
			gemini, err := chat.NewGeminiOracle(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Error("failed to initialize gemini fallback", "error", err)
			} else {
				defer gemini.Close()
				oracle = chat.NewFallbackOracle(oracle, gemini, logger)
			}
		}

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		chatService := chat.NewService(
			oracle, redisClient,
			providerRepo, clientRepo, roomRepo, apptRepo, validator,
			cfg.OpenAIChatModel, logger,
			chat.WithMaxToolRounds(cfg.ChatMaxToolRounds),
			chat.WithMetrics(chatMetrics),
			chat.WithDefaultTimezone(cfg.DefaultTimezone),
		)
		chatHandler = chat.NewHandler(chatService, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, /chat is disabled")
	}

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		ProvidersHandler:    providers.NewHandler(providerRepo, logger),
		ClientsHandler:      clients.NewHandler(clientRepo, logger),
		RoomsHandler:        rooms.NewHandler(roomRepo, logger),
		AppointmentsHandler: appointments.NewHandler(apptRepo, validator, logger),
		ChatHandler:         chatHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
