package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberforge-labs/asset-ledger/internal/types"
	"github.com/emberforge-labs/asset-ledger/pkg/clock"
)

const (
	// mint quota window, measured from the last successful mint
	quotaWindowSeconds int64 = 24 * 60 * 60
	secondsPerYear     int64 = 365 * 24 * 60 * 60
	bpsDenominator     int64 = 10_000
)

// Params are the fixed business knobs of the ledger, loaded once from config.
type Params struct {
	// FeeBps is the marketplace fee in basis points taken from every fill.
	FeeBps uint32
	// TreasuryAccount collects shop proceeds and marketplace fees.
	TreasuryAccount string
	// SeasonDuration is the fixed length of a leaderboard season.
	SeasonDuration time.Duration
}

func (p Params) Validate() error {
	if p.FeeBps > 10_000 {
		return fmt.Errorf("fee-bps must not exceed 10000, got %d", p.FeeBps)
	}
	if p.TreasuryAccount == "" {
		return fmt.Errorf("treasury account is required")
	}
	if p.SeasonDuration <= 0 {
		return fmt.Errorf("season duration must be positive")
	}
	return nil
}

// Ledger is the single owned aggregate holding every asset, balance, stake,
// listing and season score. State changes only through its operation methods;
// one mutex serializes them, each runs to completion, and every failure path
// leaves the aggregate untouched (validate first, mutate after).
//
// Timestamps inside the aggregate are unix seconds taken from the clock once
// at the start of each operation, which keeps journal replay deterministic.
type Ledger struct {
	mu    sync.Mutex
	clock clock.Clock

	params Params

	assets     map[uint64]*Asset
	assetOrder []uint64

	// spendable balances: assetID -> account -> quantity
	balances map[uint64]map[string]uint64

	// staking escrow: assetID -> account -> position, plus per-asset totals
	stakes      map[uint64]map[string]*StakePosition
	totalStaked map[uint64]uint64

	// mint governor bookkeeping: assetID -> account -> tracker
	mintTrackers map[uint64]map[string]*MintTracker

	// marketplace escrow: listings by id plus per-asset listed totals
	listings      map[uint64]*Listing
	listingOrder  []uint64
	listedEscrow  map[uint64]uint64
	nextListingID uint64

	// operator approvals: owner -> operator -> approved
	operators map[string]map[string]bool

	// seasons: current season plus scores keyed by season number
	season Season
	scores map[uint32]map[string]uint64

	// lifetime per-account accumulators backing the player stats query
	stats map[string]*PlayerAccumulator

	// seq of the last emitted record; the journal is gap-free
	seq uint64
}

// StakePosition tracks one account's escrowed stake in one asset. StartTs is
// overwritten on every additional stake; see the staking docs for the reward
// bias this carries over.
type StakePosition struct {
	Quantity uint64
	StartTs  int64
}

// MintTracker is the per-account, per-asset daily quota window.
type MintTracker struct {
	LastMintTs     int64
	MintedInWindow uint64
}

// Listing is a marketplace entry. Listings are soft-closed, never deleted.
type Listing struct {
	ID        uint64 `json:"id"`
	AssetID   uint64 `json:"asset_id"`
	Seller    string `json:"seller"`
	Remaining uint64 `json:"remaining"`
	UnitPrice uint64 `json:"unit_price"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
}

// Season is the current leaderboard epoch. Number zero means no season has
// been started yet (fresh ledger before the genesis season record).
type Season struct {
	Number  uint32 `json:"number"`
	StartTs int64  `json:"start_ts"`
}

// PlayerAccumulator carries lifetime totals that back the player stats query.
type PlayerAccumulator struct {
	StakingRewardsEarned uint64
	TradingVolume        uint64
}

// New builds a ledger with the built-in asset catalog and no season started.
// The first season is started by the service as the genesis record so that a
// replayed journal reproduces it exactly.
func New(params Params, clk clock.Clock) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{
		clock:         clk,
		params:        params,
		assets:        make(map[uint64]*Asset),
		balances:      make(map[uint64]map[string]uint64),
		stakes:        make(map[uint64]map[string]*StakePosition),
		totalStaked:   make(map[uint64]uint64),
		mintTrackers:  make(map[uint64]map[string]*MintTracker),
		listings:      make(map[uint64]*Listing),
		listedEscrow:  make(map[uint64]uint64),
		nextListingID: 1,
		operators:     make(map[string]map[string]bool),
		scores:        make(map[uint32]map[string]uint64),
		stats:         make(map[string]*PlayerAccumulator),
	}
	for _, asset := range defaultCatalog() {
		l.assets[asset.ID] = asset
		l.assetOrder = append(l.assetOrder, asset.ID)
	}
	return l, nil
}

// Seq returns the sequence number of the last emitted record.
func (l *Ledger) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// now reads the external clock once; callers pass the result down so that an
// operation observes a single timestamp.
func (l *Ledger) now() int64 {
	return l.clock.Now().Unix()
}

// nextRecord assigns the next journal sequence number. Callers must hold the
// mutex and must only call it after every validation has passed.
func (l *Ledger) nextRecord(kind types.RecordKind, ts int64, actor string) *types.Record {
	l.seq++
	return &types.Record{
		Seq:       l.seq,
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: ts,
		Actor:     actor,
	}
}

func (l *Ledger) asset(id uint64) (*Asset, *types.Error) {
	asset, ok := l.assets[id]
	if !ok {
		return nil, types.NewValidationFailedError(
			fmt.Errorf("asset %d does not exist", id),
		)
	}
	return asset, nil
}

func (l *Ledger) balanceOf(assetID uint64, account string) uint64 {
	return l.balances[assetID][account]
}

func (l *Ledger) creditBalance(assetID uint64, account string, qty uint64) {
	accounts, ok := l.balances[assetID]
	if !ok {
		accounts = make(map[string]uint64)
		l.balances[assetID] = accounts
	}
	accounts[account] += qty
}

// debitBalance assumes the caller already validated the balance.
func (l *Ledger) debitBalance(assetID uint64, account string, qty uint64) {
	accounts := l.balances[assetID]
	accounts[account] -= qty
	if accounts[account] == 0 {
		delete(accounts, account)
	}
}

func (l *Ledger) accumulator(account string) *PlayerAccumulator {
	acc, ok := l.stats[account]
	if !ok {
		acc = &PlayerAccumulator{}
		l.stats[account] = acc
	}
	return acc
}

// requireAccount rejects the null identity.
func requireAccount(field, account string) *types.Error {
	if account == "" {
		return types.NewValidationFailedError(
			fmt.Errorf("%s account must not be empty", field),
		)
	}
	return nil
}

func requireQuantity(qty uint64) *types.Error {
	if qty == 0 {
		return types.NewValidationFailedError(
			fmt.Errorf("quantity must be greater than zero"),
		)
	}
	return nil
}

func saturatingAdd(a, b uint64) uint64 {
	if a > ^uint64(0)-b {
		return ^uint64(0)
	}
	return a + b
}

func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > ^uint64(0)/b {
		return ^uint64(0)
	}
	return a * b
}

func uint64Ptr(v uint64) *uint64 { return &v }

func uint32Ptr(v uint32) *uint32 { return &v }

func boolPtr(v bool) *bool { return &v }
