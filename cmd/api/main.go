package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"newssentiment/internal/config"
	"newssentiment/internal/logging"
	"newssentiment/internal/observability"
	"newssentiment/internal/search"
	"newssentiment/internal/sentiment"
	transporthttp "newssentiment/internal/transport/http"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewCollector("newssentiment")

	es, err := search.NewESClient(cfg.Search.Addresses,
		search.WithBasicAuth(cfg.Search.Username, cfg.Search.Password),
		search.WithTimeout(cfg.Search.Timeout),
	)
	if err != nil {
		logger.Fatal("init search client", zap.Error(err))
	}

	svc, err := sentiment.NewService(search.Instrument(es, metrics, cfg.Search.DefaultIndex), sentiment.Options{
		Location:   cfg.Location(),
		FocusMonth: cfg.Month(),
		Logger:     logger.Named("sentiment"),
	})
	if err != nil {
		logger.Fatal("init sentiment service", zap.Error(err))
	}

	server := transporthttp.NewServer(svc, cfg, logger.Named("http"), metrics, es)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Search.Timeout*2 + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("news sentiment API listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Strings("elasticsearch", cfg.Search.Addresses),
			zap.String("default_index", cfg.Search.DefaultIndex),
			zap.String("timezone", cfg.Timezone),
			zap.Int("focus_month", cfg.FocusMonth),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
