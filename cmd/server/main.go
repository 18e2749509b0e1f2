package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arifaulakh/AscentCast/internal/api"
	"github.com/arifaulakh/AscentCast/internal/config"
	"github.com/arifaulakh/AscentCast/internal/llm"
	"github.com/arifaulakh/AscentCast/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := llm.NewStats(time.Hour)
	client := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxCompletionTokens, stats)

	cache, err := pipeline.NewReportCache(cfg.ReportCacheSize)
	if err != nil {
		log.Error("report cache init failed", "error", err)
		os.Exit(1)
	}

	analyzer := pipeline.NewAnalyzer(cfg, client, log)
	orch := pipeline.NewOrchestrator(cfg, analyzer, cache, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, stats, client.Model(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting requests before closing the job queue, so no
		// in-flight submit races the queue shutdown.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		client.Close()
	}()

	log.Info("starting ascentcast server", "port", cfg.Port, "model", client.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
