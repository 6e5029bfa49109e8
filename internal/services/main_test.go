package services

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emberforge-labs/asset-ledger/internal/auth"
	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/ledger"
	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/pkg/clock"
	"github.com/emberforge-labs/asset-ledger/testutil"
)

func TestMain(m *testing.M) {
	// collectors must be registered before the dispatcher records anything
	metrics.Init(12112)
	os.Exit(m.Run())
}

var testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			FeeBps:           250,
			TreasuryAccount:  "treasury",
			SeasonDuration:   30 * 24 * time.Hour,
			SnapshotEvery:    3,
			SnapshotInterval: time.Minute,
		},
		Auth: config.AuthConfig{
			Owners:       []string{"root"},
			Minters:      []string{"forge-service"},
			GameMasters:  []string{"gm"},
			Marketplaces: []string{"bazaar-service"},
		},
	}
}

func newTestService(t *testing.T, cfg *config.Config, fdb *testutil.FakeDb, fq *testutil.FakeQueue, clk clock.Clock) *Service {
	t.Helper()

	params := ledger.Params{
		FeeBps:          cfg.Ledger.FeeBps,
		TreasuryAccount: cfg.Ledger.TreasuryAccount,
		SeasonDuration:  cfg.Ledger.SeasonDuration,
	}
	ldgr, err := ledger.New(params, clk)
	require.NoError(t, err)

	return NewService(cfg, ldgr, fdb, fq, auth.NewStaticAuthorizer(&cfg.Auth))
}
