// Interview Coach - AI interview-practice backend.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/avereev/interview-coach/internal/api"
	"github.com/avereev/interview-coach/internal/chatlog"
	"github.com/avereev/interview-coach/internal/coach"
	"github.com/avereev/interview-coach/internal/config"
	"github.com/avereev/interview-coach/internal/llm"
	"github.com/avereev/interview-coach/internal/middleware"
	"github.com/avereev/interview-coach/internal/scoring"
	"github.com/avereev/interview-coach/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize the LLM client. A missing key is reported at startup but
	// only fails individual calls: scripted branches keep working without it.
	var llmClient llm.Client
	if cfg.UseMockLLM {
		slog.Info("Using mock LLM client")
		llmClient = llm.NewMock()
	} else {
		if cfg.GroqAPIKey == "" {
			slog.Warn("GROQ_API_KEY is not set; LLM-backed replies will fail until it is configured")
		}
		llmClient = llm.NewOpenAI(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
		slog.Info("LLM client initialized", "model", cfg.GroqModel)
	}
	llmClient = llm.WithTimeout(llmClient, cfg.LLMTimeout)

	// Conversation transcript logging (optional).
	var chatLogger chatlog.Logger = chatlog.Noop{}
	if cfg.ChatLog.Enabled || cfg.ChatLog.GlobalEnabled {
		fileLogger, err := chatlog.New(chatlog.Config{
			Enabled:       cfg.ChatLog.Enabled,
			Dir:           cfg.ChatLog.Dir,
			GlobalEnabled: cfg.ChatLog.GlobalEnabled,
			GlobalPath:    cfg.ChatLog.GlobalPath,
			QueueSize:     cfg.ChatLog.QueueSize,
		}, logger)
		if err != nil {
			slog.Error("Failed to initialize chat logger", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := fileLogger.Close(); closeErr != nil {
				slog.Error("Failed to close chat logger", "error", closeErr)
			}
		}()
		chatLogger = fileLogger
		slog.Info("Chat transcript logging enabled", "dir", cfg.ChatLog.Dir)
	}

	// Initialize services.
	store := session.NewStore()
	evaluator := scoring.NewEvaluator(llmClient)
	engine := coach.NewEngine(store, llmClient, evaluator)

	// Initialize handlers.
	handler := api.NewHandler(engine, chatLogger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))

	handler.RegisterRoutes(r)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start idle-session eviction.
	store.StartEviction(ctx, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
