package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/config"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/gemini"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/handlers"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/httpclient"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/mediagroup"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	gem := gemini.New(gemini.Options{
		APIKey:     gemini.EnvKey(),
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	sessions := session.NewStore(session.Options{})

	handler := handlers.New(handlers.Options{
		Telegram:  tg,
		Generator: gem,
		Sessions:  sessions,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweep(ctx, logger, cfg.SessionTTL, sessions, handler)

	workers := newPool(cfg.MaxConcurrent, cfg.RequestTimeout)

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		MaxItems: 3,
		OnFlush: func(group mediagroup.Group) {
			workers.Go(ctx, func(reqCtx context.Context) error {
				handler.HandleMediaGroup(reqCtx, group)
				return nil
			})
		},
	})
	defer aggregator.Stop()
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username(), "model", gem.Model())

	updates := tg.Updates(telegram.UpdatesOptions{Timeout: 30 * time.Second})
	defer tg.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "in_flight", workers.InFlight())
			workers.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				workers.Wait()
				return
			}
			workers.Go(ctx, func(reqCtx context.Context) error {
				err := handler.HandleUpdate(reqCtx, update)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
				}
				return err
			})
		}
	}
}

func sweep(ctx context.Context, logger *slog.Logger, ttl time.Duration, sessions *session.Store, handler *handlers.Handler) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ttl) + handler.Sweep(ttl); n > 0 {
				logger.Debug("idle state swept", "removed", n)
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
