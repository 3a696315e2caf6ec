package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"inntektlager/internal/income/client"
	"inntektlager/internal/income/janitor"
	"inntektlager/internal/income/metrics"
	"inntektlager/internal/income/service"
	"inntektlager/internal/income/store"
	"inntektlager/internal/income/usage"
	"inntektlager/internal/platform/config"
	"inntektlager/internal/platform/httpserver"
	"inntektlager/internal/platform/logger"
	"inntektlager/internal/platform/middleware"
	"inntektlager/internal/platform/postgres"
	httptransport "inntektlager/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages.
func main() {
	// .env is for local development; absence is fine in production.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := postgres.RunMigrations(db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	incomeStore := store.NewPostgres(db)
	incomeSource := client.NewHTTP(cfg.IncomeSourceURL, cfg.IncomeSourceAPIKey, cfg.IncomeSourceTimeout)
	incomeService := service.New(incomeStore, incomeSource, log, m)

	consumer, err := usage.New(usage.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.UsageTopic,
		Group:   cfg.UsageGroup,
		Grace:   cfg.UsageGrace,
	}, incomeStore, log, m)
	if err != nil {
		log.Error("usage consumer unavailable", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	retentionJanitor := janitor.New(incomeStore, cfg.Retention, cfg.JanitorInterval, log, m)

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	handler := httptransport.NewHandler(incomeService, log)
	router := httptransport.NewRouter(handler, consumer.Health(), validator, log)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting inntektlager", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		// A store failure puts the consumer in its grace period instead of
		// taking the process down; liveness degrades when the window elapses.
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("usage consumer stopped", "error", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := retentionJanitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
