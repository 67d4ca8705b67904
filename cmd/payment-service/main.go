package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/bluecart/commerce/internal/events"
	"github.com/bluecart/commerce/internal/infrastructure/memory"
	"github.com/bluecart/commerce/internal/infrastructure/postgres"
	"github.com/bluecart/commerce/internal/payment"
	"github.com/bluecart/commerce/internal/platform/bus"
	"github.com/bluecart/commerce/internal/platform/clock"
	"github.com/bluecart/commerce/internal/platform/config"
	"github.com/bluecart/commerce/internal/platform/logger"
	"github.com/bluecart/commerce/internal/transport/http/handlers"
	"github.com/bluecart/commerce/internal/transport/http/router"
)

const serviceName = "payment-service"

func main() {
	logger.Init()
	lg := logger.Logger.With().Str("service", serviceName).Logger()

	cfg, err := config.Load(serviceName)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo payment.Repo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			lg.Fatal().Err(err).Msg("failed to open database")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			lg.Fatal().Err(err).Msg("failed to ping database")
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			lg.Fatal().Err(err).Msg("failed to ensure schema")
		}
		repo = postgres.NewPaymentRepo(db)
	} else {
		lg.Warn().Msg("DATABASE_URL not set; using in-memory store")
		repo = memory.NewPaymentRepo()
	}

	b, err := bus.New(cfg.BusDriver, cfg.RedisURL, cfg.RabbitURL, cfg.RabbitExchange, serviceName, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to connect bus")
	}
	defer b.Close()

	pub := events.NewPublisher(b, serviceName, lg)
	svc := payment.New(repo, pub, payment.NewStubSettler(lg), clock.System{}, lg)

	sub := events.NewSubscriber(b, lg)
	sub.On(events.ChannelOrderCreated, svc.HandleOrderCreated)
	if err := sub.Start(ctx); err != nil {
		lg.Fatal().Err(err).Msg("failed to subscribe")
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.Payments(cfg, lg, handlers.NewPaymentHandler(svc)),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		lg.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("http shutdown failed")
	}
}
