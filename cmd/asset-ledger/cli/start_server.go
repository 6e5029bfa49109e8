package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/emberforge-labs/asset-ledger/internal/api"
	"github.com/emberforge-labs/asset-ledger/internal/auth"
	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/db"
	dbmodel "github.com/emberforge-labs/asset-ledger/internal/db/model"
	"github.com/emberforge-labs/asset-ledger/internal/ledger"
	"github.com/emberforge-labs/asset-ledger/internal/observability/logging"
	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/internal/observability/tracing"
	"github.com/emberforge-labs/asset-ledger/internal/queue"
	"github.com/emberforge-labs/asset-ledger/internal/services"
	"github.com/emberforge-labs/asset-ledger/pkg/clock"
)

const shutdownTimeout = 10 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the asset ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, _ := tracing.InjectTraceID(cmd.Context())
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}
	logging.Init(&cfg.Logging)

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger db model")
	}

	// create new db client
	dbBackend, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	var dbClient db.DbInterface = db.NewDbWithMetrics(dbBackend)

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue manager")
	}

	ldgr, err := ledger.New(ledgerParams(cfg), clock.NewSystem())
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating ledger")
	}

	authorizer := auth.NewStaticAuthorizer(&cfg.Auth)
	service := services.NewService(cfg, ldgr, dbClient, qm, authorizer)

	if bootErr := service.Bootstrap(ctx); bootErr != nil {
		log.Fatal().Err(bootErr).Msg("error while bootstrapping ledger")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.Start(ctx)

	server := api.New(&cfg.Api, service)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("API server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to shut down API server")
	}
	service.Stop(shutdownCtx)
	qm.Shutdown()
	if err := dbBackend.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to disconnect from db")
	}
	return nil
}

func ledgerParams(cfg *config.Config) ledger.Params {
	return ledger.Params{
		FeeBps:          cfg.Ledger.FeeBps,
		TreasuryAccount: cfg.Ledger.TreasuryAccount,
		SeasonDuration:  cfg.Ledger.SeasonDuration,
	}
}
