package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/xfeed/api"
	"github.com/use-agent/xfeed/api/handler"
	"github.com/use-agent/xfeed/cache"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/converge"
	"github.com/use-agent/xfeed/metrics"
	"github.com/use-agent/xfeed/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("xfeed starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"credentials", cfg.Credentials.Complete(),
		"proxy", cfg.Browser.DefaultProxy != "",
	)
	if !cfg.Credentials.Complete() {
		slog.Warn("X_AUTH_TOKEN or X_CT0 not set, every scrape runs as guest")
	}

	// ── 3. Wire the pipeline ────────────────────────────────────────
	// Browsers are launched per request, so nothing is started here.
	metrics.Init()
	launcher := scraper.NewLauncher(cfg.Browser, cfg.Scraper, cfg.Credentials)
	policy := converge.New(converge.RodLauncher(launcher))

	// ── 4. Setup router ─────────────────────────────────────────────
	tracker := &handler.Tracker{}
	router := api.NewRouter(cfg, api.Deps{
		Runner:    policy,
		Cache:     cache.New(cfg.Cache.MaxEntries),
		Tracker:   tracker,
		StartTime: time.Now(),
	})

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String(), "activeScrapes", tracker.Active())

	// Give in-flight scrapes a short window; each tears its own browser
	// down when it returns.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("xfeed stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
