package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tavernkeep/tavern-engine/internal/config"
	"github.com/tavernkeep/tavern-engine/internal/handlers"
	"github.com/tavernkeep/tavern-engine/internal/logger"
	"github.com/tavernkeep/tavern-engine/internal/middleware"
	"github.com/tavernkeep/tavern-engine/internal/services"
	"github.com/tavernkeep/tavern-engine/internal/storage"
	"github.com/tavernkeep/tavern-engine/pkg/parser"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Tavern Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.LLMModel)

	var interp parser.Interpreter
	switch cfg.LLMProvider {
	case "":
		log.Info("No LLM provider configured, grammar parsing only")
	case "venice":
		interp = services.NewVeniceService(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL)
		log.Info("Using Venice LLM provider")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"venice"})
		os.Exit(1)
	}

	if cfg.RedisURL == "" {
		log.Error("REDIS_URL is required")
		os.Exit(1)
	}
	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		logger.WithError(log, err).Error("Failed to configure storage")
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		logger.WithError(log, err).Error("Failed to connect to storage")
		os.Exit(1)
	}

	p := parser.New(interp, cfg.ParseTimeout, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, interp, log)
	mux.Handle("/health", healthHandler)

	tavernsHandler := handlers.NewTavernsHandler(log, store)
	mux.Handle("/v1/taverns", tavernsHandler)

	sessionHandler := handlers.NewSessionHandler(log, store)
	mux.Handle("/v1/sessions", sessionHandler)

	commandHandler := handlers.NewCommandHandler(log, store, p)
	mux.Handle("/v1/sessions/", routeSession(sessionHandler, commandHandler))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// routeSession splits /v1/sessions/{id} (session lifecycle) from
// /v1/sessions/{id}/command (dispatch).
func routeSession(sessions, commands http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/command") {
			commands.ServeHTTP(w, r)
			return
		}
		sessions.ServeHTTP(w, r)
	})
}
