package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

func TestMint(t *testing.T) {
	t.Run("credits balance and supply", func(t *testing.T) {
		l, _ := newTestLedger(t)

		rec, err := l.Mint(testGm, "alice", AssetHealingPotion, 30)
		requireOK(t, err)
		assert.Equal(t, types.KindMint, rec.Kind)
		assert.Equal(t, "alice", rec.To)
		assert.Equal(t, uint64(30), rec.Quantity)

		assert.Equal(t, uint64(30), balance(t, l, "alice", AssetHealingPotion))
		asset, gerr := l.GetAsset(AssetHealingPotion)
		requireOK(t, gerr)
		assert.Equal(t, uint64(30), asset.CurrentSupply)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 0)
		requireCode(t, err, types.ValidationError)
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.Mint(testGm, "", AssetHealingPotion, 1)
		requireCode(t, err, types.ValidationError)
	})

	t.Run("rejects unknown asset", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.Mint(testGm, "alice", 99, 1)
		requireCode(t, err, types.ValidationError)
	})

	t.Run("enforces max supply", func(t *testing.T) {
		l, _ := newTestLedger(t)

		// DRAKE caps at 500; the emergency path skips the quota but not the cap
		fund(t, l, "alice", AssetDrakeMount, 499)
		_, err := l.EmergencyMint(testGm, "alice", AssetDrakeMount, 2)
		requireCode(t, err, types.SupplyCapExceeded)

		_, err = l.EmergencyMint(testGm, "alice", AssetDrakeMount, 1)
		requireOK(t, err)
	})
}

func TestMintUniqueAsset(t *testing.T) {
	l, _ := newTestLedger(t)

	t.Run("quantity must be one", func(t *testing.T) {
		_, err := l.Mint(testGm, "alice", AssetEmberCrown, 2)
		requireCode(t, err, types.ValidationError)
	})

	t.Run("first mint succeeds", func(t *testing.T) {
		_, err := l.Mint(testGm, "alice", AssetEmberCrown, 1)
		requireOK(t, err)
		assert.Equal(t, uint64(1), balance(t, l, "alice", AssetEmberCrown))
	})

	t.Run("second mint rejected even after burn owner changes hands", func(t *testing.T) {
		_, err := l.Mint(testGm, "bob", AssetEmberCrown, 1)
		requireCode(t, err, types.SupplyCapExceeded)

		// burning the crown frees the supply slot again
		_, err = l.Burn("alice", "alice", AssetEmberCrown, 1)
		requireOK(t, err)
		_, err = l.Mint(testGm, "bob", AssetEmberCrown, 1)
		requireOK(t, err)
	})
}

func TestMintQuota(t *testing.T) {
	t.Run("window fills and resets 24h after the last mint", func(t *testing.T) {
		l, clk := newTestLedger(t)

		// HPOT allows 50 per account per day
		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 30)
		requireOK(t, err)

		clk.Advance(time.Hour)
		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 20)
		requireOK(t, err)

		clk.Advance(time.Hour)
		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 1)
		requireCode(t, err, types.QuotaExceeded)

		// 24h after the last successful mint the window resets in full
		clk.Set(testStart.Add(25 * time.Hour))
		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 50)
		requireOK(t, err)
	})

	t.Run("accounts have independent windows", func(t *testing.T) {
		l, _ := newTestLedger(t)

		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 50)
		requireOK(t, err)
		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 1)
		requireCode(t, err, types.QuotaExceeded)

		_, err = l.Mint(testGm, "bob", AssetHealingPotion, 50)
		requireOK(t, err)
	})

	t.Run("assets have independent windows", func(t *testing.T) {
		l, _ := newTestLedger(t)

		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 50)
		requireOK(t, err)
		_, err = l.Mint(testGm, "alice", AssetIronSword, 5)
		requireOK(t, err)
	})

	t.Run("single request above the limit fails outright", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 51)
		requireCode(t, err, types.QuotaExceeded)
	})

	t.Run("no limit means no window", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.Mint(testGm, "alice", AssetManaCrystal, 100_000)
		requireOK(t, err)
	})

	t.Run("emergency mint neither consumes nor resets the window", func(t *testing.T) {
		l, _ := newTestLedger(t)

		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 50)
		requireOK(t, err)

		_, err = l.EmergencyMint(testGm, "alice", AssetHealingPotion, 200)
		requireOK(t, err)

		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 1)
		requireCode(t, err, types.QuotaExceeded)
	})

	t.Run("lowering the limit squeezes the open window", func(t *testing.T) {
		l, clk := newTestLedger(t)

		_, err := l.Mint(testGm, "alice", AssetHealingPotion, 30)
		requireOK(t, err)

		_, serr := l.SetDailyLimit(testGm, AssetHealingPotion, 10)
		requireOK(t, serr)

		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 1)
		requireCode(t, err, types.QuotaExceeded)

		clk.Advance(24 * time.Hour)
		_, err = l.Mint(testGm, "alice", AssetHealingPotion, 10)
		requireOK(t, err)
	})
}

func TestShopPurchase(t *testing.T) {
	t.Run("mints against payment to the treasury", func(t *testing.T) {
		// asset at price 10, buyer holds 500 units of the reference asset,
		// buys 20: supply 20, reference balance 300, asset balance 20
		l, _ := newRunningLedger(t)
		fund(t, l, "xavier", AssetEmber, 500)

		rec, err := l.ShopPurchase("xavier", AssetManaCrystal, 20)
		requireOK(t, err)
		assert.Equal(t, uint64(10), rec.UnitPrice)
		assert.Equal(t, uint64(200), rec.TotalPrice)

		asset, gerr := l.GetAsset(AssetManaCrystal)
		requireOK(t, gerr)
		assert.Equal(t, uint64(20), asset.CurrentSupply)
		assert.Equal(t, uint64(300), balance(t, l, "xavier", AssetEmber))
		assert.Equal(t, uint64(20), balance(t, l, "xavier", AssetManaCrystal))
		assert.Equal(t, uint64(200), balance(t, l, testTreasury, AssetEmber))
	})

	t.Run("rejects insufficient payment", func(t *testing.T) {
		l, _ := newRunningLedger(t)
		fund(t, l, "xavier", AssetEmber, 199)

		_, err := l.ShopPurchase("xavier", AssetManaCrystal, 20)
		requireCode(t, err, types.InsufficientBalance)
		assert.Equal(t, uint64(199), balance(t, l, "xavier", AssetEmber))
	})

	t.Run("rejects the reference asset and unpriced assets", func(t *testing.T) {
		l, _ := newRunningLedger(t)
		fund(t, l, "xavier", AssetEmber, 1_000)

		_, err := l.ShopPurchase("xavier", AssetEmber, 10)
		requireCode(t, err, types.ValidationError)

		// SIGIL has no shop price
		_, err = l.ShopPurchase("xavier", AssetFounderSigil, 1)
		requireCode(t, err, types.ValidationError)
	})

	t.Run("quota applies to shop mints", func(t *testing.T) {
		l, _ := newRunningLedger(t)
		fund(t, l, "xavier", AssetEmber, 10_000)

		// HPOT costs 25 with a daily limit of 50
		_, err := l.ShopPurchase("xavier", AssetHealingPotion, 50)
		requireOK(t, err)
		_, err = l.ShopPurchase("xavier", AssetHealingPotion, 1)
		requireCode(t, err, types.QuotaExceeded)
	})

	t.Run("scores the buyer", func(t *testing.T) {
		l, _ := newRunningLedger(t)
		fund(t, l, "xavier", AssetEmber, 200_000)

		_, err := l.ShopPurchase("xavier", AssetManaCrystal, 7)
		requireOK(t, err)

		stats, serr := l.GetPlayerStats("xavier")
		requireOK(t, serr)
		assert.Equal(t, uint64(7), stats.SeasonScore)
		assert.Equal(t, uint64(70), stats.TradingVolume)

		// unique purchases weigh 100x
		_, err = l.ShopPurchase("xavier", AssetEmberCrown, 1)
		requireOK(t, err)
		stats, serr = l.GetPlayerStats("xavier")
		requireOK(t, serr)
		assert.Equal(t, uint64(107), stats.SeasonScore)
	})
}
