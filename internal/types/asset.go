package types

// Enum values for asset class
type AssetClass string

const (
	ClassFungible     AssetClass = "FUNGIBLE"
	ClassSemiFungible AssetClass = "SEMI_FUNGIBLE"
	ClassUnique       AssetClass = "UNIQUE"
)

func (c AssetClass) String() string {
	return string(c)
}

func (c AssetClass) Valid() bool {
	switch c {
	case ClassFungible, ClassSemiFungible, ClassUnique:
		return true
	default:
		return false
	}
}

// ScoreWeight is the season leaderboard multiplier applied to purchase and
// trade quantities of this class.
func (c AssetClass) ScoreWeight() uint64 {
	switch c {
	case ClassUnique:
		return 100
	case ClassSemiFungible:
		return 10
	default:
		return 1
	}
}

// RewardTier determines the annual staking rate of an asset.
type RewardTier string

const (
	TierDefault   RewardTier = "DEFAULT"
	TierRare      RewardTier = "RARE"
	TierEpic      RewardTier = "EPIC"
	TierLegendary RewardTier = "LEGENDARY"
)

func (t RewardTier) String() string {
	return string(t)
}

// AnnualRateBps returns the staking reward rate in basis points per year.
func (t RewardTier) AnnualRateBps() uint64 {
	switch t {
	case TierLegendary:
		return 2000
	case TierEpic:
		return 1500
	case TierRare:
		return 1000
	default:
		return 500
	}
}
