package db

import (
	"context"
	"time"

	"github.com/emberforge-labs/asset-ledger/internal/db/model"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	// SaveRecord appends one journal record. Appending a sequence number
	// that already exists fails with a DuplicateKeyError.
	SaveRecord(ctx context.Context, rec *types.Record) error
	// GetRecordsFrom returns records with seq >= fromSeq in sequence order.
	// A non-positive limit means no limit.
	GetRecordsFrom(ctx context.Context, fromSeq uint64, limit int64) ([]*types.Record, error)
	// GetRecordsByActor returns the actor's records with seq >= fromSeq in
	// sequence order. A non-positive limit means no limit.
	GetRecordsByActor(ctx context.Context, actor string, fromSeq uint64, limit int64) ([]*types.Record, error)
	// GetLastRecordSeq returns the highest journaled sequence number,
	// or 0 when the journal is empty.
	GetLastRecordSeq(ctx context.Context) (uint64, error)

	// SaveSnapshot upserts a serialized ledger state keyed by sequence number.
	SaveSnapshot(ctx context.Context, seq uint64, state []byte, takenAt time.Time) error
	// GetLatestSnapshot returns the snapshot with the highest sequence
	// number, or a NotFoundError when none has been taken yet.
	GetLatestSnapshot(ctx context.Context) (*model.SnapshotDocument, error)
}
