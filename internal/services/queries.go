package services

import (
	"context"
	"fmt"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// GetRecords reads the journal from fromSeq onward, capped at limit.
func (s *Service) GetRecords(ctx context.Context, fromSeq uint64, limit int64) ([]*types.Record, *types.Error) {
	records, err := s.db.GetRecordsFrom(ctx, fromSeq, limit)
	if err != nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("reading journal: %w", err))
	}
	return records, nil
}

// GetRecordsByActor reads one account's audit trail from fromSeq onward.
func (s *Service) GetRecordsByActor(ctx context.Context, actor string, fromSeq uint64, limit int64) ([]*types.Record, *types.Error) {
	if actor == "" {
		return nil, types.NewValidationFailedError(fmt.Errorf("actor must not be empty"))
	}
	records, err := s.db.GetRecordsByActor(ctx, actor, fromSeq, limit)
	if err != nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("reading journal for %s: %w", actor, err))
	}
	return records, nil
}

// Ping reports whether the journal store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
