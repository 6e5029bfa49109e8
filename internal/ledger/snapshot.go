package ledger

import (
	"fmt"
	"sort"
)

// State is the portable serialization of the whole aggregate, taken at a
// journal sequence number. Maps are flattened into sorted entry slices so
// that two snapshots of the same state are byte-identical.
type State struct {
	Seq           uint64             `json:"seq"`
	Assets        []Asset            `json:"assets"`
	Balances      []BalanceEntry     `json:"balances,omitempty"`
	Stakes        []StakeEntry       `json:"stakes,omitempty"`
	MintTrackers  []TrackerEntry     `json:"mint_trackers,omitempty"`
	Listings      []Listing          `json:"listings,omitempty"`
	NextListingID uint64             `json:"next_listing_id"`
	Operators     []OperatorEntry    `json:"operators,omitempty"`
	Season        Season             `json:"season"`
	Scores        []ScoreEntry       `json:"scores,omitempty"`
	Accumulators  []AccumulatorEntry `json:"accumulators,omitempty"`
}

type BalanceEntry struct {
	AssetID  uint64 `json:"asset_id"`
	Account  string `json:"account"`
	Quantity uint64 `json:"quantity"`
}

type StakeEntry struct {
	AssetID  uint64 `json:"asset_id"`
	Account  string `json:"account"`
	Quantity uint64 `json:"quantity"`
	StartTs  int64  `json:"start_ts"`
}

type TrackerEntry struct {
	AssetID        uint64 `json:"asset_id"`
	Account        string `json:"account"`
	LastMintTs     int64  `json:"last_mint_ts"`
	MintedInWindow uint64 `json:"minted_in_window"`
}

type OperatorEntry struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

type ScoreEntry struct {
	Season  uint32 `json:"season"`
	Account string `json:"account"`
	Score   uint64 `json:"score"`
}

type AccumulatorEntry struct {
	Account              string `json:"account"`
	StakingRewardsEarned uint64 `json:"staking_rewards_earned"`
	TradingVolume        uint64 `json:"trading_volume"`
}

// Snapshot captures the aggregate. The result shares nothing with the live
// state and can be serialized or restored at any later time.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := State{
		Seq:           l.seq,
		NextListingID: l.nextListingID,
		Season:        l.season,
	}

	state.Assets = make([]Asset, 0, len(l.assetOrder))
	for _, id := range l.assetOrder {
		state.Assets = append(state.Assets, *l.assets[id])
	}

	for assetID, accounts := range l.balances {
		for account, qty := range accounts {
			state.Balances = append(state.Balances, BalanceEntry{
				AssetID:  assetID,
				Account:  account,
				Quantity: qty,
			})
		}
	}
	sort.Slice(state.Balances, func(i, j int) bool {
		return lessAssetAccount(
			state.Balances[i].AssetID, state.Balances[i].Account,
			state.Balances[j].AssetID, state.Balances[j].Account,
		)
	})

	for assetID, positions := range l.stakes {
		for account, pos := range positions {
			state.Stakes = append(state.Stakes, StakeEntry{
				AssetID:  assetID,
				Account:  account,
				Quantity: pos.Quantity,
				StartTs:  pos.StartTs,
			})
		}
	}
	sort.Slice(state.Stakes, func(i, j int) bool {
		return lessAssetAccount(
			state.Stakes[i].AssetID, state.Stakes[i].Account,
			state.Stakes[j].AssetID, state.Stakes[j].Account,
		)
	})

	for assetID, trackers := range l.mintTrackers {
		for account, t := range trackers {
			state.MintTrackers = append(state.MintTrackers, TrackerEntry{
				AssetID:        assetID,
				Account:        account,
				LastMintTs:     t.LastMintTs,
				MintedInWindow: t.MintedInWindow,
			})
		}
	}
	sort.Slice(state.MintTrackers, func(i, j int) bool {
		return lessAssetAccount(
			state.MintTrackers[i].AssetID, state.MintTrackers[i].Account,
			state.MintTrackers[j].AssetID, state.MintTrackers[j].Account,
		)
	})

	state.Listings = make([]Listing, 0, len(l.listingOrder))
	for _, id := range l.listingOrder {
		state.Listings = append(state.Listings, *l.listings[id])
	}

	for owner, ops := range l.operators {
		for operator := range ops {
			state.Operators = append(state.Operators, OperatorEntry{
				Owner:    owner,
				Operator: operator,
			})
		}
	}
	sort.Slice(state.Operators, func(i, j int) bool {
		if state.Operators[i].Owner != state.Operators[j].Owner {
			return state.Operators[i].Owner < state.Operators[j].Owner
		}
		return state.Operators[i].Operator < state.Operators[j].Operator
	})

	for season, accounts := range l.scores {
		for account, score := range accounts {
			state.Scores = append(state.Scores, ScoreEntry{
				Season:  season,
				Account: account,
				Score:   score,
			})
		}
	}
	sort.Slice(state.Scores, func(i, j int) bool {
		if state.Scores[i].Season != state.Scores[j].Season {
			return state.Scores[i].Season < state.Scores[j].Season
		}
		return state.Scores[i].Account < state.Scores[j].Account
	})

	for account, acc := range l.stats {
		state.Accumulators = append(state.Accumulators, AccumulatorEntry{
			Account:              account,
			StakingRewardsEarned: acc.StakingRewardsEarned,
			TradingVolume:        acc.TradingVolume,
		})
	}
	sort.Slice(state.Accumulators, func(i, j int) bool {
		return state.Accumulators[i].Account < state.Accumulators[j].Account
	})

	return state
}

// Restore replaces the aggregate with a snapshot. Derived counters (total
// staked, listed escrow) are rebuilt from the entries rather than trusted,
// and the result is checked against the conservation invariants. On error
// the ledger must be discarded; Restore is a bootstrap operation, not a
// runtime one.
func (l *Ledger) Restore(state State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(state.Assets) == 0 {
		return fmt.Errorf("snapshot has no assets")
	}
	if state.NextListingID == 0 {
		return fmt.Errorf("snapshot next listing id must be positive")
	}

	assets := make(map[uint64]*Asset, len(state.Assets))
	assetOrder := make([]uint64, 0, len(state.Assets))
	for i := range state.Assets {
		asset := state.Assets[i]
		if _, ok := assets[asset.ID]; ok {
			return fmt.Errorf("snapshot repeats asset %d", asset.ID)
		}
		assets[asset.ID] = &asset
		assetOrder = append(assetOrder, asset.ID)
	}
	if _, ok := assets[ReferenceAssetID]; !ok {
		return fmt.Errorf("snapshot is missing the reference asset")
	}

	balances := make(map[uint64]map[string]uint64)
	for _, e := range state.Balances {
		if e.Quantity == 0 {
			continue
		}
		accounts, ok := balances[e.AssetID]
		if !ok {
			accounts = make(map[string]uint64)
			balances[e.AssetID] = accounts
		}
		accounts[e.Account] = e.Quantity
	}

	stakes := make(map[uint64]map[string]*StakePosition)
	totalStaked := make(map[uint64]uint64)
	for _, e := range state.Stakes {
		if e.Quantity == 0 {
			continue
		}
		positions, ok := stakes[e.AssetID]
		if !ok {
			positions = make(map[string]*StakePosition)
			stakes[e.AssetID] = positions
		}
		positions[e.Account] = &StakePosition{Quantity: e.Quantity, StartTs: e.StartTs}
		totalStaked[e.AssetID] += e.Quantity
	}

	mintTrackers := make(map[uint64]map[string]*MintTracker)
	for _, e := range state.MintTrackers {
		trackers, ok := mintTrackers[e.AssetID]
		if !ok {
			trackers = make(map[string]*MintTracker)
			mintTrackers[e.AssetID] = trackers
		}
		trackers[e.Account] = &MintTracker{
			LastMintTs:     e.LastMintTs,
			MintedInWindow: e.MintedInWindow,
		}
	}

	listings := make(map[uint64]*Listing, len(state.Listings))
	listingOrder := make([]uint64, 0, len(state.Listings))
	listedEscrow := make(map[uint64]uint64)
	for i := range state.Listings {
		listing := state.Listings[i]
		if _, ok := listings[listing.ID]; ok {
			return fmt.Errorf("snapshot repeats listing %d", listing.ID)
		}
		if listing.ID >= state.NextListingID {
			return fmt.Errorf("snapshot listing %d is at or past the next listing id %d",
				listing.ID, state.NextListingID)
		}
		listings[listing.ID] = &listing
		listingOrder = append(listingOrder, listing.ID)
		if listing.Active {
			listedEscrow[listing.AssetID] += listing.Remaining
		}
	}

	operators := make(map[string]map[string]bool)
	for _, e := range state.Operators {
		ops, ok := operators[e.Owner]
		if !ok {
			ops = make(map[string]bool)
			operators[e.Owner] = ops
		}
		ops[e.Operator] = true
	}

	scores := make(map[uint32]map[string]uint64)
	for _, e := range state.Scores {
		season, ok := scores[e.Season]
		if !ok {
			season = make(map[string]uint64)
			scores[e.Season] = season
		}
		season[e.Account] = e.Score
	}

	stats := make(map[string]*PlayerAccumulator)
	for _, e := range state.Accumulators {
		stats[e.Account] = &PlayerAccumulator{
			StakingRewardsEarned: e.StakingRewardsEarned,
			TradingVolume:        e.TradingVolume,
		}
	}

	l.assets = assets
	l.assetOrder = assetOrder
	l.balances = balances
	l.stakes = stakes
	l.totalStaked = totalStaked
	l.mintTrackers = mintTrackers
	l.listings = listings
	l.listingOrder = listingOrder
	l.listedEscrow = listedEscrow
	l.nextListingID = state.NextListingID
	l.operators = operators
	l.season = state.Season
	l.scores = scores
	l.stats = stats
	l.seq = state.Seq

	if err := l.invariantViolation(); err != nil {
		return fmt.Errorf("snapshot violates ledger invariants: %w", err)
	}
	return nil
}

func lessAssetAccount(aID uint64, aAcct string, bID uint64, bAcct string) bool {
	if aID != bID {
		return aID < bID
	}
	return aAcct < bAcct
}
