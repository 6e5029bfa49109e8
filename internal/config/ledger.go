package config

import (
	"errors"
	"time"
)

type LedgerConfig struct {
	// FeeBps is the marketplace fee charged on every fill, in basis points.
	FeeBps          uint32        `mapstructure:"fee-bps"`
	TreasuryAccount string        `mapstructure:"treasury-account"`
	SeasonDuration  time.Duration `mapstructure:"season-duration"`
	// SnapshotEvery is the number of journal records between two state snapshots.
	SnapshotEvery uint64 `mapstructure:"snapshot-every"`
	// SnapshotInterval is how often the snapshot poller checks whether
	// enough records have accumulated.
	SnapshotInterval time.Duration `mapstructure:"snapshot-interval"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.FeeBps > 10000 {
		return errors.New("fee-bps must not exceed 10000")
	}

	if cfg.TreasuryAccount == "" {
		return errors.New("treasury-account must be set")
	}

	if cfg.SeasonDuration <= 0 {
		return errors.New("season-duration must be positive")
	}

	if cfg.SnapshotEvery == 0 {
		return errors.New("snapshot-every must be positive")
	}

	if cfg.SnapshotInterval <= 0 {
		return errors.New("snapshot-interval must be positive")
	}

	return nil
}
