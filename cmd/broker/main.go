package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentmarket/internal/config"
	"agentmarket/internal/infra/bus"
	pg "agentmarket/internal/infra/db/postgres"
	"agentmarket/internal/infra/logging"
	"agentmarket/internal/infra/metrics"
	"agentmarket/internal/infra/web"
	"agentmarket/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateBroker(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Broker.DatabaseURL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	// ---- Repositories ----
	posterRepo := pg.NewPosterRepo(pool)
	agentRepo := pg.NewAgentRepo(pool)
	jobRepo := pg.NewJobRepo(pool)
	escrowRepo := pg.NewEscrowRepo(pool)
	updateRepo := pg.NewUpdateRepo(pool)
	deliverableRepo := pg.NewDeliverableRepo(pool)
	instructionRepo := pg.NewInstructionRepo(pool)

	// ---- Use cases ----
	eventBus := bus.New()
	jobUC := usecase.NewJobUseCase(jobRepo, posterRepo, agentRepo, escrowRepo,
		updateRepo, deliverableRepo, instructionRepo,
		eventBus, usecase.SimulatedRefGenerator{}, logger)
	posterUC := usecase.NewPosterUseCase(posterRepo)
	agentUC := usecase.NewAgentUseCase(agentRepo, usecase.SimulatedWalletGenerator{})

	// ---- HTTP ----
	metrics.MustRegister()
	srv := web.NewServer(jobUC, posterUC, agentUC, eventBus, cfg.Broker.PingInterval, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", srv.Router())

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Broker.Port), Handler: mux}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("db", cfg.Broker.DatabaseURL).Msg("broker listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	cancel()
}
