package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/emberforge-labs/asset-ledger/internal/db"
	"github.com/emberforge-labs/asset-ledger/internal/db/model"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// FakeDb is an in-memory stand-in for db.DbInterface. It mirrors the store's
// contract (unique seq, ordered scans, latest snapshot wins) and adds failure
// switches so tests can exercise outage handling.
type FakeDb struct {
	mu              sync.Mutex
	records         map[uint64]*types.Record
	snapshots       map[uint64]*model.SnapshotDocument
	failSaveRecord  int
	failSaveSnap    bool
	failReadRecords bool
}

func NewFakeDb() *FakeDb {
	return &FakeDb{
		records:   make(map[uint64]*types.Record),
		snapshots: make(map[uint64]*model.SnapshotDocument),
	}
}

// SetFailSaveRecord makes the next n SaveRecord calls fail.
func (f *FakeDb) SetFailSaveRecord(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaveRecord = n
}

// SetFailSaveSnapshot toggles SaveSnapshot failures.
func (f *FakeDb) SetFailSaveSnapshot(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaveSnap = fail
}

// SetFailReadRecords toggles journal read failures.
func (f *FakeDb) SetFailReadRecords(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReadRecords = fail
}

func (f *FakeDb) Ping(ctx context.Context) error { return nil }

func (f *FakeDb) SaveRecord(ctx context.Context, rec *types.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSaveRecord > 0 {
		f.failSaveRecord--
		return errors.New("journal store unavailable")
	}
	if _, ok := f.records[rec.Seq]; ok {
		return &db.DuplicateKeyError{
			Key:     fmt.Sprintf("%d", rec.Seq),
			Message: fmt.Sprintf("record with seq %d already journaled", rec.Seq),
		}
	}
	f.records[rec.Seq] = rec
	return nil
}

func (f *FakeDb) GetRecordsFrom(ctx context.Context, fromSeq uint64, limit int64) ([]*types.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failReadRecords {
		return nil, errors.New("journal store unavailable")
	}

	seqs := make([]uint64, 0, len(f.records))
	for seq := range f.records {
		if seq >= fromSeq {
			seqs = append(seqs, seq)
		}
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	var out []*types.Record
	for _, seq := range seqs {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, f.records[seq])
	}
	return out, nil
}

func (f *FakeDb) GetRecordsByActor(ctx context.Context, actor string, fromSeq uint64, limit int64) ([]*types.Record, error) {
	all, err := f.GetRecordsFrom(ctx, fromSeq, 0)
	if err != nil {
		return nil, err
	}
	var out []*types.Record
	for _, rec := range all {
		if rec.Actor != actor {
			continue
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *FakeDb) GetLastRecordSeq(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var last uint64
	for seq := range f.records {
		if seq > last {
			last = seq
		}
	}
	return last, nil
}

func (f *FakeDb) SaveSnapshot(ctx context.Context, seq uint64, state []byte, takenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSaveSnap {
		return errors.New("snapshot store unavailable")
	}
	f.snapshots[seq] = &model.SnapshotDocument{Seq: seq, State: state, TakenAt: takenAt}
	return nil
}

func (f *FakeDb) GetLatestSnapshot(ctx context.Context) (*model.SnapshotDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *model.SnapshotDocument
	for _, doc := range f.snapshots {
		if latest == nil || doc.Seq > latest.Seq {
			latest = doc
		}
	}
	if latest == nil {
		return nil, &db.NotFoundError{Key: model.SnapshotCollection, Message: "no snapshot has been taken yet"}
	}
	return latest, nil
}

// SeedRecord places a record directly into the journal, bypassing the
// duplicate check.
func (f *FakeDb) SeedRecord(rec *types.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.Seq] = rec
}

// SeedSnapshot places a snapshot document directly into the store.
func (f *FakeDb) SeedSnapshot(seq uint64, state []byte, takenAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[seq] = &model.SnapshotDocument{Seq: seq, State: state, TakenAt: takenAt}
}

// Record returns the journaled record at seq, or nil.
func (f *FakeDb) Record(seq uint64) *types.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[seq]
}

// JournaledSeqs returns every journaled seq in ascending order.
func (f *FakeDb) JournaledSeqs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	seqs := make([]uint64, 0, len(f.records))
	for seq := range f.records {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	return seqs
}

// SnapshotSeqs returns every stored snapshot seq in ascending order.
func (f *FakeDb) SnapshotSeqs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	seqs := make([]uint64, 0, len(f.snapshots))
	for seq := range f.snapshots {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	return seqs
}

// SnapshotDoc returns the stored snapshot at seq, or nil.
func (f *FakeDb) SnapshotDoc(seq uint64) *model.SnapshotDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots[seq]
}

// FakeQueue is an in-memory stand-in for queue.QueueClient.
type FakeQueue struct {
	mu        sync.Mutex
	published []*types.Record
	fail      bool
}

func NewFakeQueue() *FakeQueue {
	return &FakeQueue{}
}

// SetFail toggles publish failures.
func (f *FakeQueue) SetFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *FakeQueue) PublishRecord(ctx context.Context, rec *types.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, rec)
	return nil
}

func (f *FakeQueue) Shutdown() {}

// Published returns the records published so far, in order.
func (f *FakeQueue) Published() []*types.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Record(nil), f.published...)
}

// PublishedCount returns how many records have been published.
func (f *FakeQueue) PublishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}
