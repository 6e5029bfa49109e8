package ledger

import (
	"fmt"
	"sort"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// AssetHolding is one row of a player's per-asset position.
type AssetHolding struct {
	AssetID   uint64           `json:"asset_id"`
	Symbol    string           `json:"symbol"`
	Class     types.AssetClass `json:"class"`
	Spendable uint64           `json:"spendable"`
	Staked    uint64           `json:"staked"`
	Listed    uint64           `json:"listed"`
}

// PlayerStats aggregates everything the ledger knows about one account.
type PlayerStats struct {
	Account              string         `json:"account"`
	Holdings             []AssetHolding `json:"holdings"`
	TotalValue           uint64         `json:"total_value"`
	StakingRewardsEarned uint64         `json:"staking_rewards_earned"`
	TradingVolume        uint64         `json:"trading_volume"`
	SeasonScore          uint64         `json:"season_score"`
}

// StakeInfo describes one account's position in one asset.
type StakeInfo struct {
	AssetID       uint64 `json:"asset_id"`
	Staked        uint64 `json:"staked"`
	StakeStartTs  int64  `json:"stake_start_ts,omitempty"`
	PendingReward uint64 `json:"pending_reward"`
	TotalStaked   uint64 `json:"total_staked"`
}

// SeasonInfo describes the current leaderboard epoch.
type SeasonInfo struct {
	Number    uint32 `json:"number"`
	StartTs   int64  `json:"start_ts"`
	EndTs     int64  `json:"end_ts"`
	Remaining int64  `json:"remaining_seconds"`
	Active    bool   `json:"active"`
}

// LeaderboardEntry is one ranked row of a season's leaderboard.
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	Account string `json:"account"`
	Score   uint64 `json:"score"`
}

// BalanceOf returns the spendable balance of an account in one asset.
func (l *Ledger) BalanceOf(account string, assetID uint64) (uint64, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("account", account); err != nil {
		return 0, err
	}
	if _, err := l.asset(assetID); err != nil {
		return 0, err
	}
	return l.balanceOf(assetID, account), nil
}

// BatchBalanceOf resolves index-aligned (account, asset) pairs in one call.
func (l *Ledger) BatchBalanceOf(accounts []string, assetIDs []uint64) ([]uint64, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(accounts) != len(assetIDs) {
		return nil, types.NewValidationFailedError(
			fmt.Errorf("batch query mismatch: %d accounts, %d assets",
				len(accounts), len(assetIDs)),
		)
	}

	balances := make([]uint64, len(accounts))
	for i, account := range accounts {
		if err := requireAccount("account", account); err != nil {
			return nil, err
		}
		if _, err := l.asset(assetIDs[i]); err != nil {
			return nil, err
		}
		balances[i] = l.balanceOf(assetIDs[i], account)
	}
	return balances, nil
}

// GetAsset returns a copy of one catalog entry.
func (l *Ledger) GetAsset(assetID uint64) (Asset, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	asset, ok := l.assets[assetID]
	if !ok {
		return Asset{}, types.NewNotFoundError(
			fmt.Errorf("asset %d does not exist", assetID),
		)
	}
	return *asset, nil
}

// ListAssets returns the catalog in its fixed order.
func (l *Ledger) ListAssets() []Asset {
	l.mu.Lock()
	defer l.mu.Unlock()

	assets := make([]Asset, 0, len(l.assetOrder))
	for _, id := range l.assetOrder {
		assets = append(assets, *l.assets[id])
	}
	return assets
}

// GetListing returns a copy of one listing, closed ones included.
func (l *Ledger) GetListing(listingID uint64) (Listing, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	listing, ok := l.listings[listingID]
	if !ok {
		return Listing{}, types.NewNotFoundError(
			fmt.Errorf("listing %d does not exist", listingID),
		)
	}
	return *listing, nil
}

// ActiveListings returns open listings in creation order.
func (l *Ledger) ActiveListings() []Listing {
	l.mu.Lock()
	defer l.mu.Unlock()

	var listings []Listing
	for _, id := range l.listingOrder {
		if listing := l.listings[id]; listing.Active {
			listings = append(listings, *listing)
		}
	}
	return listings
}

// IsOperator reports whether operator may move owner's balances.
func (l *Ledger) IsOperator(owner, operator string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.operators[owner][operator]
}

// StakingInfo returns the account's position in one asset, with the reward
// that unstaking the whole position right now would pay.
func (l *Ledger) StakingInfo(account string, assetID uint64) (StakeInfo, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("account", account); err != nil {
		return StakeInfo{}, err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return StakeInfo{}, err
	}

	info := StakeInfo{
		AssetID:     assetID,
		TotalStaked: l.totalStaked[assetID],
	}
	pos := l.stakes[assetID][account]
	if pos == nil {
		return info, nil
	}

	elapsed := l.now() - pos.StartTs
	if elapsed < 0 {
		elapsed = 0
	}
	reward, rewardErr := stakingReward(pos.Quantity, asset.RewardTier.AnnualRateBps(), elapsed)
	if rewardErr != nil {
		return StakeInfo{}, rewardErr
	}

	info.Staked = pos.Quantity
	info.StakeStartTs = pos.StartTs
	info.PendingReward = reward
	return info, nil
}

// GetPlayerStats aggregates an account's holdings, escrow positions, value in
// the reference asset, lifetime accumulators and current-season score.
func (l *Ledger) GetPlayerStats(account string) (PlayerStats, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("account", account); err != nil {
		return PlayerStats{}, err
	}

	// listed escrow attributed per seller by scanning open listings
	listed := make(map[uint64]uint64)
	for _, id := range l.listingOrder {
		listing := l.listings[id]
		if listing.Active && listing.Seller == account {
			listed[listing.AssetID] += listing.Remaining
		}
	}

	stats := PlayerStats{Account: account}
	for _, id := range l.assetOrder {
		asset := l.assets[id]
		holding := AssetHolding{
			AssetID:   id,
			Symbol:    asset.Symbol,
			Class:     asset.Class,
			Spendable: l.balanceOf(id, account),
			Listed:    listed[id],
		}
		if pos := l.stakes[id][account]; pos != nil {
			holding.Staked = pos.Quantity
		}

		owned := holding.Spendable + holding.Staked + holding.Listed
		if owned == 0 {
			continue
		}
		stats.Holdings = append(stats.Holdings, holding)

		// the reference asset is the unit of value; everything else is
		// valued at its shop price
		if id == ReferenceAssetID {
			stats.TotalValue = saturatingAdd(stats.TotalValue, owned)
		} else {
			stats.TotalValue = saturatingAdd(stats.TotalValue, saturatingMul(owned, asset.Price))
		}
	}

	if acc := l.stats[account]; acc != nil {
		stats.StakingRewardsEarned = acc.StakingRewardsEarned
		stats.TradingVolume = acc.TradingVolume
	}
	if l.season.Number > 0 {
		stats.SeasonScore = l.scores[l.season.Number][account]
	}
	return stats, nil
}

// CurrentSeasonInfo describes the running season. Before the genesis season
// record the ledger has no season and Active is false.
func (l *Ledger) CurrentSeasonInfo() SeasonInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.season.Number == 0 {
		return SeasonInfo{}
	}

	info := SeasonInfo{
		Number:  l.season.Number,
		StartTs: l.season.StartTs,
		EndTs:   l.seasonEndTs(),
	}
	if now := l.now(); now < info.EndTs {
		info.Remaining = info.EndTs - now
		info.Active = true
	}
	return info
}

// Leaderboard returns the top accounts of a season by score, descending,
// ties broken by account for a stable order. Season zero means the current
// season; limit zero means no limit.
func (l *Ledger) Leaderboard(season uint32, limit int) []LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if season == 0 {
		season = l.season.Number
	}

	scores := l.scores[season]
	entries := make([]LeaderboardEntry, 0, len(scores))
	for account, score := range scores {
		entries = append(entries, LeaderboardEntry{Account: account, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Account < entries[j].Account
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// CheckInvariants verifies the aggregate's conservation laws: per-asset
// supply equals balances plus escrow, escrow counters match their sources,
// and unique assets never exceed supply one. It reports the first violation.
func (l *Ledger) CheckInvariants() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invariantViolation()
}

// invariantViolation is CheckInvariants without the lock, for callers that
// already hold it.
func (l *Ledger) invariantViolation() error {
	listedByAsset := make(map[uint64]uint64)
	for _, id := range l.listingOrder {
		if listing := l.listings[id]; listing.Active {
			listedByAsset[listing.AssetID] += listing.Remaining
		}
	}

	for _, id := range l.assetOrder {
		asset := l.assets[id]

		var held uint64
		for _, qty := range l.balances[id] {
			held += qty
		}
		total := held + l.totalStaked[id] + l.listedEscrow[id]
		if total != asset.CurrentSupply {
			return fmt.Errorf(
				"asset %s: balances %d + staked %d + listed %d != supply %d",
				asset.Symbol, held, l.totalStaked[id], l.listedEscrow[id], asset.CurrentSupply,
			)
		}

		var staked uint64
		for _, pos := range l.stakes[id] {
			staked += pos.Quantity
		}
		if staked != l.totalStaked[id] {
			return fmt.Errorf("asset %s: stake positions sum %d != total staked %d",
				asset.Symbol, staked, l.totalStaked[id])
		}

		if listedByAsset[id] != l.listedEscrow[id] {
			return fmt.Errorf("asset %s: open listings sum %d != listed escrow %d",
				asset.Symbol, listedByAsset[id], l.listedEscrow[id])
		}

		if asset.Class == types.ClassUnique && asset.CurrentSupply > 1 {
			return fmt.Errorf("unique asset %s has supply %d",
				asset.Symbol, asset.CurrentSupply)
		}
	}
	return nil
}
