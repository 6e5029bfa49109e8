//go:build integration

package db_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberforge-labs/asset-ledger/internal/db"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

func randomRecord(seq uint64) *types.Record {
	return &types.Record{
		Seq:       seq,
		ID:        uuid.NewString(),
		Kind:      types.KindTransfer,
		Timestamp: gofakeit.Date().Unix(),
		Actor:     gofakeit.Gamertag(),
		From:      gofakeit.Gamertag(),
		To:        gofakeit.Gamertag(),
		Quantity:  gofakeit.Uint64(),
	}
}

// fullRecord sets every optional field so the storage round trip covers
// the whole document shape, not just the common transfer fields.
func fullRecord(seq uint64) *types.Record {
	var (
		assetID   uint64 = 3
		listingID uint64 = 9
		season    uint32 = 2
		approved         = true
		price     uint64 = 150
		limit     uint64 = 25
		enabled          = false
	)
	return &types.Record{
		Seq:        seq,
		ID:         uuid.NewString(),
		Kind:       types.KindListingFilled,
		Timestamp:  1750000000,
		Actor:      "alice",
		AssetID:    &assetID,
		From:       "bob",
		To:         "alice",
		Quantity:   4,
		AssetIDs:   []uint64{1, 2},
		Quantities: []uint64{10, 20},
		ListingID:  &listingID,
		UnitPrice:  150,
		TotalPrice: 600,
		Fee:        15,
		Reward:     7,
		Season:     &season,
		Operator:   "carol",
		Approved:   &approved,
		Price:      &price,
		Limit:      &limit,
		Enabled:    &enabled,
	}
}

func TestRecords(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("save and read back all fields", func(t *testing.T) {
		rec := fullRecord(1)
		require.NoError(t, testDB.SaveRecord(ctx, rec))

		records, err := testDB.GetRecordsFrom(ctx, 1, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, rec, records[0])
	})
	t.Run("duplicate seq rejected", func(t *testing.T) {
		rec := randomRecord(2)
		require.NoError(t, testDB.SaveRecord(ctx, rec))

		err := testDB.SaveRecord(ctx, randomRecord(2))
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKeyError(err))
	})
	t.Run("range scan is ordered and bounded", func(t *testing.T) {
		for seq := uint64(3); seq <= 7; seq++ {
			require.NoError(t, testDB.SaveRecord(ctx, randomRecord(seq)))
		}

		records, err := testDB.GetRecordsFrom(ctx, 4, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, uint64(4), records[0].Seq)
		assert.Equal(t, uint64(5), records[1].Seq)

		records, err = testDB.GetRecordsFrom(ctx, 6, 0)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, uint64(6), records[0].Seq)
		assert.Equal(t, uint64(7), records[1].Seq)
	})
	t.Run("filter by actor", func(t *testing.T) {
		actor := gofakeit.Gamertag()

		mine := randomRecord(100)
		mine.Actor = actor
		require.NoError(t, testDB.SaveRecord(ctx, mine))
		require.NoError(t, testDB.SaveRecord(ctx, randomRecord(101)))

		records, err := testDB.GetRecordsByActor(ctx, actor, 0, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, mine, records[0])
	})
	t.Run("last seq", func(t *testing.T) {
		seq, err := testDB.GetLastRecordSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(101), seq)
	})
}

func TestLastRecordSeqEmptyJournal(t *testing.T) {
	resetDatabase(t)

	seq, err := testDB.GetLastRecordSeq(t.Context())
	require.NoError(t, err)
	assert.Zero(t, seq)
}
