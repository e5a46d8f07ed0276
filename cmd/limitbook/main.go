package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/limitbook/internal/config"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/feed"
	"github.com/efreitasn/limitbook/internal/handler"
	"github.com/efreitasn/limitbook/internal/journal"
	"github.com/efreitasn/limitbook/internal/service"
	"github.com/efreitasn/limitbook/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Book, tape, and live feed.
	book := engine.NewBook()
	tape := store.NewTradeStore()
	hub := feed.NewHub()

	// Optional on-disk trade journal.
	var jnl *journal.Journal
	if cfg.JournalDir != "" {
		jnl, err = journal.Open(cfg.JournalDir)
		if err != nil {
			logger.Error("failed to open journal", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer jnl.Close()
		logger.Info("journal opened",
			slog.String("dir", cfg.JournalDir),
			slog.Uint64("records", jnl.Len()))
	}

	ticks, err := service.NewTickConverter(cfg.TickSize)
	if err != nil {
		logger.Error("invalid tick size", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Services.
	orderSvc := service.NewOrderService(book, tape, jnl, hub, ticks, logger)
	marketSvc := service.NewMarketService(book, tape, ticks, cfg.VWAPWindow)

	// Router.
	router := handler.NewRouter(orderSvc, marketSvc, hub, logger)

	// Start the good-for-day expiry worker with a cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	expiry := engine.NewExpiryWorker(book, cfg.ExpiryCutoff, cfg.ExpiryWakeBuffer, logger)
	expiry.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("expiry_cutoff", cfg.ExpiryCutoff.String()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops expiry worker).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
