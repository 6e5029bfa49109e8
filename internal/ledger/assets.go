package ledger

import (
	"fmt"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// Fixed asset identifiers. The catalog is part of the ledger definition;
// runtime configuration only adjusts price, quota and tradeability.
const (
	AssetEmber         uint64 = 0 // reference fungible asset, all prices quoted in it
	AssetHealingPotion uint64 = 1
	AssetManaCrystal   uint64 = 2
	AssetIronSword     uint64 = 3
	AssetRunedShield   uint64 = 4
	AssetDrakeMount    uint64 = 5
	AssetEmberCrown    uint64 = 6
	AssetFounderSigil  uint64 = 7
)

// ReferenceAssetID is the asset every price, fee and staking reward is
// denominated in.
const ReferenceAssetID = AssetEmber

// Asset is a catalog entry plus its mutable supply and trading knobs.
// MaxSupply zero means unbounded; Unique assets always cap at exactly one.
type Asset struct {
	ID             uint64           `json:"id"`
	Symbol         string           `json:"symbol"`
	Name           string           `json:"name"`
	URI            string           `json:"uri"`
	Class          types.AssetClass `json:"class"`
	MaxSupply      uint64           `json:"max_supply"`
	CurrentSupply  uint64           `json:"current_supply"`
	Price          uint64           `json:"price"`
	Tradeable      bool             `json:"tradeable"`
	DailyMintLimit uint64           `json:"daily_mint_limit"`
	RewardTier     types.RewardTier `json:"reward_tier"`
}

func defaultCatalog() []*Asset {
	return []*Asset{
		{
			ID:         AssetEmber,
			Symbol:     "EMBER",
			Name:       "Ember",
			URI:        "https://assets.emberforge.dev/meta/ember.json",
			Class:      types.ClassFungible,
			RewardTier: types.TierDefault,
		},
		{
			ID:             AssetHealingPotion,
			Symbol:         "HPOT",
			Name:           "Healing Potion",
			URI:            "https://assets.emberforge.dev/meta/healing-potion.json",
			Class:          types.ClassFungible,
			MaxSupply:      500_000,
			Price:          25,
			Tradeable:      true,
			DailyMintLimit: 50,
			RewardTier:     types.TierDefault,
		},
		{
			ID:         AssetManaCrystal,
			Symbol:     "MANA",
			Name:       "Mana Crystal",
			URI:        "https://assets.emberforge.dev/meta/mana-crystal.json",
			Class:      types.ClassFungible,
			MaxSupply:  1_000_000,
			Price:      10,
			Tradeable:  true,
			RewardTier: types.TierDefault,
		},
		{
			ID:             AssetIronSword,
			Symbol:         "SWORD",
			Name:           "Iron Sword",
			URI:            "https://assets.emberforge.dev/meta/iron-sword.json",
			Class:          types.ClassSemiFungible,
			MaxSupply:      10_000,
			Price:          150,
			Tradeable:      true,
			DailyMintLimit: 5,
			RewardTier:     types.TierRare,
		},
		{
			ID:             AssetRunedShield,
			Symbol:         "SHIELD",
			Name:           "Runed Shield",
			URI:            "https://assets.emberforge.dev/meta/runed-shield.json",
			Class:          types.ClassSemiFungible,
			MaxSupply:      4_000,
			Price:          400,
			Tradeable:      true,
			DailyMintLimit: 3,
			RewardTier:     types.TierEpic,
		},
		{
			ID:             AssetDrakeMount,
			Symbol:         "DRAKE",
			Name:           "Drake Mount",
			URI:            "https://assets.emberforge.dev/meta/drake-mount.json",
			Class:          types.ClassSemiFungible,
			MaxSupply:      500,
			Price:          2_500,
			Tradeable:      true,
			DailyMintLimit: 1,
			RewardTier:     types.TierEpic,
		},
		{
			ID:             AssetEmberCrown,
			Symbol:         "CROWN",
			Name:           "Ember Crown",
			URI:            "https://assets.emberforge.dev/meta/ember-crown.json",
			Class:          types.ClassUnique,
			MaxSupply:      1,
			Price:          100_000,
			Tradeable:      true,
			DailyMintLimit: 1,
			RewardTier:     types.TierLegendary,
		},
		{
			ID:         AssetFounderSigil,
			Symbol:     "SIGIL",
			Name:       "Founder Sigil",
			URI:        "https://assets.emberforge.dev/meta/founder-sigil.json",
			Class:      types.ClassUnique,
			MaxSupply:  1,
			Tradeable:  true,
			RewardTier: types.TierLegendary,
		},
	}
}

// SetPrice updates the shop price of an asset. Price zero makes the asset
// non-purchasable from the shop.
func (l *Ledger) SetPrice(actor string, assetID, price uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applySetPrice(assetID, price); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindPriceSet, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.Price = uint64Ptr(price)
	return rec, nil
}

func (l *Ledger) applySetPrice(assetID, price uint64) *types.Error {
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}
	if assetID == ReferenceAssetID && price != 0 {
		return types.NewValidationFailedError(
			fmt.Errorf("reference asset cannot carry a shop price"),
		)
	}
	asset.Price = price
	return nil
}

// SetDailyLimit updates the per-account daily mint quota. Zero disables the
// quota for the asset.
func (l *Ledger) SetDailyLimit(actor string, assetID, limit uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applySetDailyLimit(assetID, limit); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindDailyLimitSet, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.Limit = uint64Ptr(limit)
	return rec, nil
}

func (l *Ledger) applySetDailyLimit(assetID, limit uint64) *types.Error {
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}
	asset.DailyMintLimit = limit
	return nil
}

// SetTradingEnabled toggles marketplace activity for an asset. Disabling
// blocks new listings and fills of existing ones; cancels stay possible so
// sellers can always recover escrow.
func (l *Ledger) SetTradingEnabled(actor string, assetID uint64, enabled bool) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applySetTradingEnabled(assetID, enabled); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindTradingSet, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.Enabled = boolPtr(enabled)
	return rec, nil
}

func (l *Ledger) applySetTradingEnabled(assetID uint64, enabled bool) *types.Error {
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}
	asset.Tradeable = enabled
	return nil
}
