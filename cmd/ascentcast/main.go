package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/arifaulakh/AscentCast/internal/config"
	"github.com/arifaulakh/AscentCast/internal/llm"
	"github.com/arifaulakh/AscentCast/internal/pipeline"
	"github.com/arifaulakh/AscentCast/internal/watcher"
	"github.com/joho/godotenv"
)

const defaultUserContext = "I am a professional looking to grow my career in technology and startups."

func main() {
	userContext := flag.String("context", defaultUserContext,
		"brief description of your background and what you're looking to learn")
	outPath := flag.String("out", "", "write the report to this file instead of stdout")
	watchMode := flag.Bool("watch", false, "watch an input directory for new transcripts")
	mockMode := flag.Bool("mock", false, "use canned responses instead of the Anthropic API")
	jsonLogs := flag.Bool("json-logs", false, "emit JSON logs")
	flag.Parse()

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if *jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	log := slog.New(handler)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var completer llm.Completer
	if *mockMode {
		completer = llm.NewMockCompleter()
	} else {
		if cfg.AnthropicAPIKey == "" {
			log.Error("ANTHROPIC_API_KEY is required (or pass -mock)")
			os.Exit(1)
		}
		client := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxCompletionTokens, nil)
		defer client.Close()
		completer = client
	}

	analyzer := pipeline.NewAnalyzer(cfg, completer, log)

	if *watchMode {
		runWatch(cfg, analyzer, *userContext, log)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ascentcast [flags] <transcript-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	report, err := analyzer.Analyze(context.Background(), flag.Arg(0), *userContext)
	if err != nil {
		log.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	if *outPath != "" {
		if err := report.WriteMarkdownAtomic(*outPath); err != nil {
			log.Error("write report failed", "error", err)
			os.Exit(1)
		}
		log.Info("report written", "path", *outPath, "partial", report.Partial)
		return
	}
	fmt.Print(report.Markdown())
}

// runWatch analyzes every new transcript dropped into the input
// directory and writes reports into the output directory.
func runWatch(cfg config.Config, analyzer *pipeline.Analyzer, userContext string, log *slog.Logger) {
	if cfg.WatchInputDir == "" {
		log.Error("WATCH_INPUT_DIR is required for -watch")
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.WatchOutputDir, 0o755); err != nil {
		log.Error("create output dir failed", "error", err)
		os.Exit(1)
	}

	handle := func(ctx context.Context, path string) error {
		start := time.Now()
		report, err := analyzer.Analyze(ctx, path, userContext)
		if err != nil {
			return err
		}
		out := filepath.Join(cfg.WatchOutputDir, reportFilename(path))
		if err := report.WriteMarkdownAtomic(out); err != nil {
			return err
		}
		log.Info("report written", "transcript", path, "report", out,
			"partial", report.Partial, "duration", time.Since(start))
		return nil
	}

	w, err := watcher.New(cfg.WatchInputDir, cfg.WatchMaxConcurrent, handle, log)
	if err != nil {
		log.Error("watcher init failed", "error", err)
		os.Exit(1)
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil && err != context.Canceled {
		log.Error("watcher stopped", "error", err)
		os.Exit(1)
	}
}

func reportFilename(transcriptPath string) string {
	base := filepath.Base(transcriptPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".insights.md"
}
