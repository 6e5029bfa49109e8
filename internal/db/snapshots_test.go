//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberforge-labs/asset-ledger/internal/db"
)

func TestSnapshots(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	takenAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no snapshot yet", func(t *testing.T) {
		doc, err := testDB.GetLatestSnapshot(ctx)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)
	})
	t.Run("latest wins", func(t *testing.T) {
		require.NoError(t, testDB.SaveSnapshot(ctx, 10, []byte(`{"seq":10}`), takenAt))
		require.NoError(t, testDB.SaveSnapshot(ctx, 25, []byte(`{"seq":25}`), takenAt.Add(time.Hour)))

		doc, err := testDB.GetLatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(25), doc.Seq)
		assert.Equal(t, []byte(`{"seq":25}`), doc.State)
		assert.Equal(t, takenAt.Add(time.Hour).UTC(), doc.TakenAt.UTC())
	})
	t.Run("same seq upserts", func(t *testing.T) {
		require.NoError(t, testDB.SaveSnapshot(ctx, 25, []byte(`{"seq":25,"v":2}`), takenAt.Add(2*time.Hour)))

		doc, err := testDB.GetLatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(25), doc.Seq)
		assert.Equal(t, []byte(`{"seq":25,"v":2}`), doc.State)
	})
}
