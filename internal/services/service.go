package services

import (
	"context"
	"sync/atomic"

	"github.com/emberforge-labs/asset-ledger/internal/auth"
	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/db"
	"github.com/emberforge-labs/asset-ledger/internal/ledger"
	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/internal/queue"
	"github.com/emberforge-labs/asset-ledger/internal/utils/poller"
)

// Service ties the in-memory ledger to its durable surroundings: every
// operation is authorized, executed on the ledger, journaled to the db and
// published to the queue. The ledger state is authoritative; journal and
// queue trail it.
type Service struct {
	cfg          *config.Config
	ledger       *ledger.Ledger
	db           db.DbInterface
	queueManager queue.QueueClient
	authorizer   auth.Authorizer

	lastSnapshotSeq atomic.Uint64
	snapshotPoller  *poller.Poller
}

func NewService(
	cfg *config.Config,
	ldgr *ledger.Ledger,
	db db.DbInterface,
	qm queue.QueueClient,
	authorizer auth.Authorizer,
) *Service {
	return &Service{
		cfg:          cfg,
		ledger:       ldgr,
		db:           db,
		queueManager: qm,
		authorizer:   authorizer,
	}
}

// Ledger exposes the underlying ledger for read-only queries.
func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

// Start launches the background snapshot poller. Bootstrap must have
// completed before Start is called.
func (s *Service) Start(ctx context.Context) {
	s.snapshotPoller = poller.NewPoller(
		"snapshot",
		s.cfg.Ledger.SnapshotInterval,
		metrics.RecordPollerDuration("snapshot", s.maybeSnapshot),
	)
	go s.snapshotPoller.Start(ctx)
}

// Stop halts background work and persists a final snapshot so the next
// bootstrap replays as little journal as possible.
func (s *Service) Stop(ctx context.Context) {
	if s.snapshotPoller != nil {
		s.snapshotPoller.Stop()
	}
	if err := s.TakeSnapshot(ctx); err != nil {
		// the journal still has everything, the next bootstrap just replays more
		return
	}
}
