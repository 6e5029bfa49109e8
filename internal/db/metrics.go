package db

import (
	"context"
	"time"

	"github.com/emberforge-labs/asset-ledger/internal/db/model"
	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveRecord(ctx context.Context, rec *types.Record) error {
	return d.run("SaveRecord", func() error {
		return d.db.SaveRecord(ctx, rec)
	})
}

func (d *DbWithMetrics) GetRecordsFrom(ctx context.Context, fromSeq uint64, limit int64) (result []*types.Record, err error) {
	//nolint:errcheck
	d.run("GetRecordsFrom", func() error {
		result, err = d.db.GetRecordsFrom(ctx, fromSeq, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) GetRecordsByActor(ctx context.Context, actor string, fromSeq uint64, limit int64) (result []*types.Record, err error) {
	//nolint:errcheck
	d.run("GetRecordsByActor", func() error {
		result, err = d.db.GetRecordsByActor(ctx, actor, fromSeq, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) GetLastRecordSeq(ctx context.Context) (result uint64, err error) {
	//nolint:errcheck
	d.run("GetLastRecordSeq", func() error {
		result, err = d.db.GetLastRecordSeq(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveSnapshot(ctx context.Context, seq uint64, state []byte, takenAt time.Time) error {
	return d.run("SaveSnapshot", func() error {
		return d.db.SaveSnapshot(ctx, seq, state, takenAt)
	})
}

func (d *DbWithMetrics) GetLatestSnapshot(ctx context.Context) (result *model.SnapshotDocument, err error) {
	//nolint:errcheck
	d.run("GetLatestSnapshot", func() error {
		result, err = d.db.GetLatestSnapshot(ctx)
		return err
	})
	return
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
