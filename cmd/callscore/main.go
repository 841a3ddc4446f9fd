package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/callscore/internal/analysis"
	"github.com/MikeSquared-Agency/callscore/internal/api"
	"github.com/MikeSquared-Agency/callscore/internal/config"
	"github.com/MikeSquared-Agency/callscore/internal/coordinator"
	"github.com/MikeSquared-Agency/callscore/internal/events"
	"github.com/MikeSquared-Agency/callscore/internal/facets"
	"github.com/MikeSquared-Agency/callscore/internal/llm"
	"github.com/MikeSquared-Agency/callscore/internal/store"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("callscore starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	completer := llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	// Facet analyzer
	analyzer := facets.New(completer, slog.Default())
	if cfg.FacetTimeoutSecs > 0 {
		analyzer.SetTimeout(time.Duration(cfg.FacetTimeoutSecs) * time.Second)
	}

	// NATS (optional — scoring works without events, downstream just goes quiet)
	var orchEvents analysis.Publisher
	var coordEvents coordinator.Publisher
	eventsClient, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Warn("NATS unavailable, running without events", "error", err)
	} else {
		defer eventsClient.Close()
		orchEvents = eventsClient
		coordEvents = eventsClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Pipeline
	orch := analysis.New(analyzer, db, orchEvents, cfg.AnthropicModel, slog.Default())
	coord := coordinator.New(db, orch, coordEvents, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, coord, db)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if coordEvents != nil {
		if err := coordEvents.Publish(events.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"model":     cfg.AnthropicModel,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("callscore ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("callscore stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
