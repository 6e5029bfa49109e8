package types

// Enum values for operation record kinds
type RecordKind string

const (
	KindMint            RecordKind = "MINT"
	KindEmergencyMint   RecordKind = "EMERGENCY_MINT"
	KindBurn            RecordKind = "BURN"
	KindTransfer        RecordKind = "TRANSFER"
	KindBatchTransfer   RecordKind = "BATCH_TRANSFER"
	KindOperatorSet     RecordKind = "OPERATOR_SET"
	KindShopPurchase    RecordKind = "SHOP_PURCHASE"
	KindStake           RecordKind = "STAKE"
	KindUnstake         RecordKind = "UNSTAKE"
	KindListingCreated  RecordKind = "LISTING_CREATED"
	KindListingFilled   RecordKind = "LISTING_FILLED"
	KindListingCanceled RecordKind = "LISTING_CANCELED"
	KindSeasonStarted   RecordKind = "SEASON_STARTED"
	KindPriceSet        RecordKind = "PRICE_SET"
	KindDailyLimitSet   RecordKind = "DAILY_LIMIT_SET"
	KindTradingSet      RecordKind = "TRADING_SET"
)

func (k RecordKind) String() string {
	return string(k)
}

// Record is the structured audit entry emitted by every successful
// state-changing operation. A record carries every input of the operation so
// the journal can be replayed deterministically; optional fields stay nil for
// kinds that do not use them.
type Record struct {
	// Seq is assigned by the ledger, strictly increasing, gap-free.
	Seq       uint64     `json:"seq"`
	ID        string     `json:"id"`
	Kind      RecordKind `json:"kind"`
	Timestamp int64      `json:"timestamp"` // unix seconds, clock read at operation start
	Actor     string     `json:"actor"`

	AssetID  *uint64 `json:"asset_id,omitempty"`
	From     string  `json:"from,omitempty"`
	To       string  `json:"to,omitempty"`
	Quantity uint64  `json:"quantity,omitempty"`

	// Batch transfer legs, index-aligned.
	AssetIDs   []uint64 `json:"asset_ids,omitempty"`
	Quantities []uint64 `json:"quantities,omitempty"`

	// Marketplace and shop fields, denominated in the reference asset.
	ListingID  *uint64 `json:"listing_id,omitempty"`
	UnitPrice  uint64  `json:"unit_price,omitempty"`
	TotalPrice uint64  `json:"total_price,omitempty"`
	Fee        uint64  `json:"fee,omitempty"`

	// Staking payout, minted in the reference asset on unstake.
	Reward uint64 `json:"reward,omitempty"`

	Season *uint32 `json:"season,omitempty"`

	// Administrative updates.
	Operator string  `json:"operator,omitempty"`
	Approved *bool   `json:"approved,omitempty"`
	Price    *uint64 `json:"price,omitempty"`
	Limit    *uint64 `json:"limit,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty"`
}
