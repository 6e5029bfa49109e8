package ledger

import (
	"fmt"
	"time"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// StartNewSeason opens the next leaderboard epoch. Scores are keyed per
// season, so starting a new one leaves history intact.
func (l *Ledger) StartNewSeason(actor string) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applyStartSeason(ts); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindSeasonStarted, ts, actor)
	rec.Season = uint32Ptr(l.season.Number)
	return rec, nil
}

func (l *Ledger) applyStartSeason(ts int64) *types.Error {
	if l.season.Number == ^uint32(0) {
		return types.NewInternalServiceError(
			fmt.Errorf("season counter exhausted"),
		)
	}
	l.season.Number++
	l.season.StartTs = ts
	return nil
}

// seasonEndTs is the exclusive end of the current season.
func (l *Ledger) seasonEndTs() int64 {
	return l.season.StartTs + int64(l.params.SeasonDuration/time.Second)
}

// recordActivity adds class-weighted score to the account's current-season
// total. Activity outside a running season scores nothing; an expired season
// stops accumulating even before the next one is started.
func (l *Ledger) recordActivity(ts int64, account string, asset *Asset, qty uint64) {
	if l.season.Number == 0 || ts >= l.seasonEndTs() {
		return
	}

	delta := saturatingMul(qty, asset.Class.ScoreWeight())

	season, ok := l.scores[l.season.Number]
	if !ok {
		season = make(map[string]uint64)
		l.scores[l.season.Number] = season
	}
	season[account] = saturatingAdd(season[account], delta)
}

func (l *Ledger) addTradingVolume(account string, amount uint64) {
	acc := l.accumulator(account)
	acc.TradingVolume = saturatingAdd(acc.TradingVolume, amount)
}
