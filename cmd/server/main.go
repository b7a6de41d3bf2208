package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gyaneshwarpardhi/depgraph/internal/advice"
	"github.com/gyaneshwarpardhi/depgraph/internal/api"
	"github.com/gyaneshwarpardhi/depgraph/internal/board"
	"github.com/gyaneshwarpardhi/depgraph/internal/config"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("DEPGRAPH_ADDR", ":8080"), "HTTP listen address")
	cfgPath := flag.String("config", envOr("DEPGRAPH_CONFIG", "configs/board.yaml"), "Path to board YAML config")
	logLevel := flag.String("log-level", envOr("DEPGRAPH_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", envOr("DEPGRAPH_LOG_FORMAT", "text"), "Log format: text or json")
	flag.Parse()

	slog.SetDefault(newLogger(*logLevel, *logFormat, os.Stdout))

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	// ── Board sessions ───────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr, err := board.NewManager(ctx, cfg, advice.Default())
	if err != nil {
		slog.Error("invalid board config", "err", err)
		os.Exit(1)
	}
	slog.Info("board seed loaded",
		"board", cfg.Board.Name,
		"tasks", len(cfg.Tasks),
		"rules", len(mgr.Analyzer().Rules()),
	)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(mgr.Reload)
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.New(mgr, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop analysis workers
	mgr.Shutdown()
	slog.Info("goodbye")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
