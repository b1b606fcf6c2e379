package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"findash/internal/shared/config"
	"findash/internal/shared/logger"
	"findash/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log := logger.New("info", false)
		log.Fatal().Err(err).Msg("application error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(sctx); err != nil {
				log.Error().Err(err).Msg("telemetry shutdown")
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	handler := SetupRoutes(deps, cfg, log)
	srv, redirectSrv, errc := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	log.Info().
		Str("backend", cfg.Store.Backend).
		Str("timezone", cfg.Reporting.Location.String()).
		Msg("findash api ready")

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	GracefulShutdown(sctx, srv, redirectSrv, log)

	log.Info().Msg("server stopped")
	return nil
}
