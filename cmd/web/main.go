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

	"github.com/joho/godotenv"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/config"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/gemini"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/httpclient"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	gem := gemini.New(gemini.Options{
		APIKey:     gemini.EnvKey(),
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if gemini.EnvKey()() == "" {
		logger.Warn("GEMINI_API_KEY is not set; generation will fail until it is")
	}

	sessions := session.NewStore(session.Options{})

	srv, err := web.New(web.Options{
		Store:              sessions,
		Generator:          gem,
		Logger:             logger,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		MaxConcurrent:      cfg.MaxConcurrent,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SecureCookie:       cfg.SecureCookies,
	})
	if err != nil {
		logger.Error("web init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweep(ctx, logger, cfg.SessionTTL, sessions)

	httpSrv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	logger.Info("web started", "addr", cfg.WebAddr, "model", gem.Model())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func sweep(ctx context.Context, logger *slog.Logger, ttl time.Duration, sessions *session.Store) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ttl); n > 0 {
				logger.Debug("idle sessions swept", "removed", n, "remaining", sessions.Len())
			}
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
