package services

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/emberforge-labs/asset-ledger/internal/db"
	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

const (
	journalRetryAttempts = 5
	journalRetryDelay    = 200 * time.Millisecond
)

// Mint creates governed supply. Requires the minter role.
func (s *Service) Mint(ctx context.Context, actor, to string, assetID, qty uint64) (*types.Record, *types.Error) {
	if err := s.authorizer.Authorize(actor, types.RoleMinter); err != nil {
		return nil, err
	}
	return s.commit(ctx, types.KindMint, func() (*types.Record, *types.Error) {
		return s.ledger.Mint(actor, to, assetID, qty)
	})
}

// EmergencyMint bypasses the per-account mint quota. Requires the game
// master role.
func (s *Service) EmergencyMint(ctx context.Context, actor, to string, assetID, qty uint64) (*types.Record, *types.Error) {
	if err := s.authorizer.Authorize(actor, types.RoleGameMaster); err != nil {
		return nil, err
	}
	return s.commit(ctx, types.KindEmergencyMint, func() (*types.Record, *types.Error) {
		return s.ledger.EmergencyMint(actor, to, assetID, qty)
	})
}

// Burn destroys supply held by from. Ownership or operator approval is
// checked by the ledger, no role needed.
func (s *Service) Burn(ctx context.Context, actor, from string, assetID, qty uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindBurn, func() (*types.Record, *types.Error) {
		return s.ledger.Burn(actor, from, assetID, qty)
	})
}

func (s *Service) Transfer(ctx context.Context, actor, from, to string, assetID, qty uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindTransfer, func() (*types.Record, *types.Error) {
		return s.ledger.Transfer(actor, from, to, assetID, qty)
	})
}

func (s *Service) BatchTransfer(ctx context.Context, actor, from, to string, assetIDs, quantities []uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindBatchTransfer, func() (*types.Record, *types.Error) {
		return s.ledger.BatchTransfer(actor, from, to, assetIDs, quantities)
	})
}

func (s *Service) ApproveOperator(ctx context.Context, owner, operator string, approved bool) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindOperatorSet, func() (*types.Record, *types.Error) {
		return s.ledger.ApproveOperator(owner, operator, approved)
	})
}

func (s *Service) ShopPurchase(ctx context.Context, buyer string, assetID, qty uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindShopPurchase, func() (*types.Record, *types.Error) {
		return s.ledger.ShopPurchase(buyer, assetID, qty)
	})
}

func (s *Service) Stake(ctx context.Context, account string, assetID, qty uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindStake, func() (*types.Record, *types.Error) {
		return s.ledger.Stake(account, assetID, qty)
	})
}

func (s *Service) Unstake(ctx context.Context, account string, assetID, qty uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindUnstake, func() (*types.Record, *types.Error) {
		return s.ledger.Unstake(account, assetID, qty)
	})
}

func (s *Service) List(ctx context.Context, seller string, assetID, qty, unitPrice uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindListingCreated, func() (*types.Record, *types.Error) {
		return s.ledger.List(seller, assetID, qty, unitPrice)
	})
}

func (s *Service) PurchaseListing(ctx context.Context, buyer string, listingID, qty uint64) (*types.Record, *types.Error) {
	return s.commit(ctx, types.KindListingFilled, func() (*types.Record, *types.Error) {
		return s.ledger.PurchaseListing(buyer, listingID, qty)
	})
}

// CancelListing closes a listing and returns the escrowed quantity to the
// seller. Forced cancellation requires the game master or marketplace role;
// a plain cancel only needs the seller themselves (checked by the ledger).
func (s *Service) CancelListing(ctx context.Context, actor string, listingID uint64, force bool) (*types.Record, *types.Error) {
	if force {
		if err := s.authorizer.Authorize(actor, types.RoleGameMaster, types.RoleMarketplace); err != nil {
			return nil, err
		}
	}
	return s.commit(ctx, types.KindListingCanceled, func() (*types.Record, *types.Error) {
		return s.ledger.CancelListing(actor, listingID, force)
	})
}

// StartNewSeason requires the game master role.
func (s *Service) StartNewSeason(ctx context.Context, actor string) (*types.Record, *types.Error) {
	if err := s.authorizer.Authorize(actor, types.RoleGameMaster); err != nil {
		return nil, err
	}
	return s.commit(ctx, types.KindSeasonStarted, func() (*types.Record, *types.Error) {
		return s.ledger.StartNewSeason(actor)
	})
}

// SetPrice requires the game master role.
func (s *Service) SetPrice(ctx context.Context, actor string, assetID, price uint64) (*types.Record, *types.Error) {
	if err := s.authorizer.Authorize(actor, types.RoleGameMaster); err != nil {
		return nil, err
	}
	return s.commit(ctx, types.KindPriceSet, func() (*types.Record, *types.Error) {
		return s.ledger.SetPrice(actor, assetID, price)
	})
}

// SetDailyLimit requires the game master role.
func (s *Service) SetDailyLimit(ctx context.Context, actor string, assetID, limit uint64) (*types.Record, *types.Error) {
	if err := s.authorizer.Authorize(actor, types.RoleGameMaster); err != nil {
		return nil, err
	}
	return s.commit(ctx, types.KindDailyLimitSet, func() (*types.Record, *types.Error) {
		return s.ledger.SetDailyLimit(actor, assetID, limit)
	})
}

// SetTradingEnabled requires the game master role.
func (s *Service) SetTradingEnabled(ctx context.Context, actor string, assetID uint64, enabled bool) (*types.Record, *types.Error) {
	if err := s.authorizer.Authorize(actor, types.RoleGameMaster); err != nil {
		return nil, err
	}
	return s.commit(ctx, types.KindTradingSet, func() (*types.Record, *types.Error) {
		return s.ledger.SetTradingEnabled(actor, assetID, enabled)
	})
}

// commit runs the ledger operation and, on success, journals the record and
// publishes it. The in-memory state is authoritative as soon as the ledger
// mutation returns; journal or publish failures are surfaced through logs
// and metrics, never by unwinding the operation.
func (s *Service) commit(ctx context.Context, kind types.RecordKind, op func() (*types.Record, *types.Error)) (*types.Record, *types.Error) {
	startTime := time.Now()

	rec, opErr := op()
	if opErr != nil {
		metrics.RecordOpDuration(time.Since(startTime), kind.String(), true)
		return nil, opErr
	}

	s.journalRecord(ctx, rec)
	s.publishRecord(ctx, rec)

	metrics.RecordOpDuration(time.Since(startTime), kind.String(), false)
	metrics.RecordLedgerSeq(rec.Seq)
	switch rec.Kind {
	case types.KindSeasonStarted:
		if rec.Season != nil {
			metrics.RecordCurrentSeason(*rec.Season)
		}
	case types.KindListingCreated, types.KindListingFilled, types.KindListingCanceled:
		metrics.RecordActiveListings(len(s.ledger.ActiveListings()))
	}

	return rec, nil
}

// journalRecord appends the record with retries. A duplicate key is not
// retried: it means the journal already diverged from the in-memory seq
// counter and needs operator attention.
func (s *Service) journalRecord(ctx context.Context, rec *types.Record) {
	err := retry.Do(
		func() error {
			return s.db.SaveRecord(ctx, rec)
		},
		retry.Attempts(journalRetryAttempts),
		retry.Delay(journalRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !db.IsDuplicateKeyError(err)
		}),
	)
	if err != nil {
		metrics.RecordJournalAppendError()
		log.Ctx(ctx).Error().Err(err).
			Uint64("seq", rec.Seq).
			Str("kind", rec.Kind.String()).
			Msg("Failed to journal record after retries")
	}
}

func (s *Service) publishRecord(ctx context.Context, rec *types.Record) {
	if err := s.queueManager.PublishRecord(ctx, rec); err != nil {
		metrics.RecordQueueSendError()
		log.Ctx(ctx).Warn().Err(err).
			Uint64("seq", rec.Seq).
			Str("kind", rec.Kind.String()).
			Msg("Failed to publish record")
	}
}
