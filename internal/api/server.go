package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/services"
)

// actorHeader carries the account performing a state-changing operation.
// Verifying that the caller controls the account is the platform gateway's
// job; this service only checks roles.
const actorHeader = "X-Ledger-Actor"

const (
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 30 * time.Second
)

type Server struct {
	httpServer *http.Server
	service    *services.Service
}

func New(cfg *config.ApiConfig, service *services.Service) *Server {
	s := &Server{service: service}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(tracingMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealthcheck)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Post("/mint", s.handleMint)
			r.Post("/emergency-mint", s.handleEmergencyMint)
			r.Post("/burn", s.handleBurn)
			r.Post("/transfer", s.handleTransfer)
			r.Post("/batch-transfer", s.handleBatchTransfer)
			r.Post("/approve-operator", s.handleApproveOperator)
			r.Post("/shop-purchase", s.handleShopPurchase)
			r.Post("/stake", s.handleStake)
			r.Post("/unstake", s.handleUnstake)
			r.Post("/list", s.handleCreateListing)
			r.Post("/purchase-listing", s.handlePurchaseListing)
			r.Post("/cancel-listing", s.handleCancelListing)
			r.Post("/start-season", s.handleStartSeason)
			r.Post("/set-price", s.handleSetPrice)
			r.Post("/set-daily-limit", s.handleSetDailyLimit)
			r.Post("/set-trading", s.handleSetTrading)
		})

		r.Get("/assets", s.handleListAssets)
		r.Get("/assets/{assetID}", s.handleGetAsset)
		r.Get("/balances", s.handleBatchBalances)
		r.Get("/balances/{account}/{assetID}", s.handleGetBalance)
		r.Get("/listings", s.handleActiveListings)
		r.Get("/listings/{listingID}", s.handleGetListing)
		r.Get("/players/{account}/stats", s.handlePlayerStats)
		r.Get("/players/{account}/staking/{assetID}", s.handleStakingInfo)
		r.Get("/operators/{owner}/{operator}", s.handleIsOperator)
		r.Get("/season", s.handleSeason)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/records", s.handleRecords)
		r.Get("/records/actor/{actor}", s.handleRecordsByActor)
	})

	return r
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting API server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
