package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// maybeSnapshot persists a snapshot once enough records accumulated since
// the last one. Runs on the snapshot poller.
func (s *Service) maybeSnapshot(ctx context.Context) *types.Error {
	if s.ledger.Seq() < s.lastSnapshotSeq.Load()+s.cfg.Ledger.SnapshotEvery {
		return nil
	}
	return s.TakeSnapshot(ctx)
}

// TakeSnapshot persists the current ledger state regardless of cadence.
// Besides the poller it backs the rebuild-snapshot maintenance command.
func (s *Service) TakeSnapshot(ctx context.Context) *types.Error {
	startTime := time.Now()

	state := s.ledger.Snapshot()
	stateBytes, err := json.Marshal(state)
	if err != nil {
		metrics.RecordSnapshotDuration(time.Since(startTime), true)
		return types.NewInternalServiceError(fmt.Errorf("serializing snapshot at seq %d: %w", state.Seq, err))
	}

	if err := s.db.SaveSnapshot(ctx, state.Seq, stateBytes, time.Now().UTC()); err != nil {
		metrics.RecordSnapshotDuration(time.Since(startTime), true)
		return types.NewInternalServiceError(fmt.Errorf("persisting snapshot at seq %d: %w", state.Seq, err))
	}

	metrics.RecordSnapshotDuration(time.Since(startTime), false)
	s.lastSnapshotSeq.Store(state.Seq)
	log.Ctx(ctx).Info().
		Uint64("seq", state.Seq).
		Int("bytes", len(stateBytes)).
		Msg("Persisted ledger snapshot")
	return nil
}
