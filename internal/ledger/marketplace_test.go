package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// listSwords funds the seller and opens a listing, returning its id.
func listSwords(t *testing.T, l *Ledger, seller string, qty, unitPrice uint64) uint64 {
	t.Helper()

	fund(t, l, seller, AssetIronSword, qty)
	rec, err := l.List(seller, AssetIronSword, qty, unitPrice)
	requireOK(t, err)
	require.NotNil(t, rec.ListingID)
	return *rec.ListingID
}

func TestList(t *testing.T) {
	t.Run("escrows the quantity", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)

		assert.Equal(t, uint64(0), balance(t, l, "seller", AssetIronSword))

		listing, err := l.GetListing(id)
		requireOK(t, err)
		assert.True(t, listing.Active)
		assert.Equal(t, uint64(10), listing.Remaining)
		assert.Equal(t, uint64(40), listing.UnitPrice)
		assert.Equal(t, "seller", listing.Seller)
	})

	t.Run("listing ids are sequential", func(t *testing.T) {
		l, _ := newTestLedger(t)
		first := listSwords(t, l, "seller", 5, 40)
		second := listSwords(t, l, "other", 5, 45)
		assert.Equal(t, first+1, second)
	})

	t.Run("rejects untradeable assets", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "seller", AssetEmber, 100)

		_, err := l.List("seller", AssetEmber, 10, 1)
		requireCode(t, err, types.TradingDisabled)
	})

	t.Run("rejects insufficient balance and zero price", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "seller", AssetIronSword, 5)

		_, err := l.List("seller", AssetIronSword, 6, 40)
		requireCode(t, err, types.InsufficientBalance)

		_, err = l.List("seller", AssetIronSword, 5, 0)
		requireCode(t, err, types.ValidationError)
	})
}

func TestPurchaseListing(t *testing.T) {
	t.Run("splits payment between seller and treasury", func(t *testing.T) {
		// fee is 250 bps: a 2400 fill pays 60 to the treasury, 2340 to the
		// seller, and the two always sum to the full price
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 100, 40)
		fund(t, l, "buyer", AssetEmber, 10_000)

		rec, err := l.PurchaseListing("buyer", id, 60)
		requireOK(t, err)
		assert.Equal(t, uint64(2400), rec.TotalPrice)
		assert.Equal(t, uint64(60), rec.Fee)

		assert.Equal(t, uint64(7600), balance(t, l, "buyer", AssetEmber))
		assert.Equal(t, uint64(2340), balance(t, l, "seller", AssetEmber))
		assert.Equal(t, uint64(60), balance(t, l, testTreasury, AssetEmber))
		assert.Equal(t, uint64(60), balance(t, l, "buyer", AssetIronSword))

		listing, gerr := l.GetListing(id)
		requireOK(t, gerr)
		assert.True(t, listing.Active)
		assert.Equal(t, uint64(40), listing.Remaining)
	})

	t.Run("exhausting the listing closes it", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "buyer", AssetEmber, 1_000)

		_, err := l.PurchaseListing("buyer", id, 10)
		requireOK(t, err)

		listing, gerr := l.GetListing(id)
		requireOK(t, gerr)
		assert.False(t, listing.Active)
		assert.Zero(t, listing.Remaining)

		_, err = l.PurchaseListing("buyer", id, 1)
		requireCode(t, err, types.ListingClosed)
	})

	t.Run("rejects overdraws of the listing", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "buyer", AssetEmber, 1_000)

		_, err := l.PurchaseListing("buyer", id, 11)
		requireCode(t, err, types.ListingClosed)
	})

	t.Run("rejects self trades", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "seller", AssetEmber, 1_000)

		_, err := l.PurchaseListing("seller", id, 1)
		requireCode(t, err, types.SelfTrade)
	})

	t.Run("rejects unknown listings", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.PurchaseListing("buyer", 42, 1)
		requireCode(t, err, types.NotFound)
	})

	t.Run("rejects underfunded buyers without mutating", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "buyer", AssetEmber, 39)

		_, err := l.PurchaseListing("buyer", id, 1)
		requireCode(t, err, types.InsufficientBalance)

		listing, gerr := l.GetListing(id)
		requireOK(t, gerr)
		assert.Equal(t, uint64(10), listing.Remaining)
		assert.Equal(t, uint64(39), balance(t, l, "buyer", AssetEmber))
	})

	t.Run("disabled trading blocks fills but not cancels", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "buyer", AssetEmber, 1_000)

		_, err := l.SetTradingEnabled(testGm, AssetIronSword, false)
		requireOK(t, err)

		_, err = l.PurchaseListing("buyer", id, 1)
		requireCode(t, err, types.TradingDisabled)

		_, err = l.CancelListing("seller", id, false)
		requireOK(t, err)
		assert.Equal(t, uint64(10), balance(t, l, "seller", AssetIronSword))
	})

	t.Run("scores both parties in a running season", func(t *testing.T) {
		l, _ := newRunningLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "buyer", AssetEmber, 1_000)

		_, err := l.PurchaseListing("buyer", id, 3)
		requireOK(t, err)

		// semi-fungible fills weigh 10x
		buyerStats, serr := l.GetPlayerStats("buyer")
		requireOK(t, serr)
		assert.Equal(t, uint64(30), buyerStats.SeasonScore)
		assert.Equal(t, uint64(120), buyerStats.TradingVolume)

		sellerStats, serr := l.GetPlayerStats("seller")
		requireOK(t, serr)
		assert.Equal(t, uint64(30), sellerStats.SeasonScore)
		assert.Equal(t, uint64(120), sellerStats.TradingVolume)
	})
}

func TestCancelListing(t *testing.T) {
	t.Run("returns escrow to the seller", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)
		fund(t, l, "buyer", AssetEmber, 1_000)

		_, err := l.PurchaseListing("buyer", id, 4)
		requireOK(t, err)

		rec, err := l.CancelListing("seller", id, false)
		requireOK(t, err)
		assert.Equal(t, uint64(6), rec.Quantity)
		assert.Equal(t, uint64(6), balance(t, l, "seller", AssetIronSword))

		listing, gerr := l.GetListing(id)
		requireOK(t, gerr)
		assert.False(t, listing.Active)
	})

	t.Run("strangers cannot cancel without force", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)

		_, err := l.CancelListing("mallory", id, false)
		requireCode(t, err, types.Unauthorized)

		// moderation path: the service authorizes, the ledger obeys, and the
		// escrow still goes to the seller
		_, err = l.CancelListing(testGm, id, true)
		requireOK(t, err)
		assert.Equal(t, uint64(10), balance(t, l, "seller", AssetIronSword))
	})

	t.Run("closed listings cannot be canceled again", func(t *testing.T) {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", 10, 40)

		_, err := l.CancelListing("seller", id, false)
		requireOK(t, err)
		_, err = l.CancelListing("seller", id, false)
		requireCode(t, err, types.ListingClosed)
	})
}

func TestActiveListings(t *testing.T) {
	l, _ := newTestLedger(t)

	first := listSwords(t, l, "seller", 5, 40)
	second := listSwords(t, l, "other", 5, 45)
	third := listSwords(t, l, "seller", 5, 50)

	_, err := l.CancelListing("other", second, false)
	requireOK(t, err)

	open := l.ActiveListings()
	require.Len(t, open, 2)
	assert.Equal(t, first, open[0].ID)
	assert.Equal(t, third, open[1].ID)
}

func TestFeeSplitProperty(t *testing.T) {
	// seller payment + treasury fee must equal the full price for any fill
	cases := []struct {
		qty       uint64
		unitPrice uint64
	}{
		{1, 1},
		{1, 39},
		{3, 333},
		{7, 1_000},
		{10, 9_999},
	}

	for _, tc := range cases {
		l, _ := newTestLedger(t)
		id := listSwords(t, l, "seller", tc.qty, tc.unitPrice)
		total := tc.qty * tc.unitPrice
		fund(t, l, "buyer", AssetEmber, total)

		rec, err := l.PurchaseListing("buyer", id, tc.qty)
		requireOK(t, err)

		wantFee := total * testFeeBps / 10_000
		assert.Equal(t, total, rec.TotalPrice)
		assert.Equal(t, wantFee, rec.Fee)
		assert.Equal(t, wantFee, balance(t, l, testTreasury, AssetEmber))
		assert.Equal(t, total-wantFee, balance(t, l, "seller", AssetEmber))
		assert.Equal(t, uint64(0), balance(t, l, "buyer", AssetEmber))
		require.NoError(t, l.CheckInvariants())
	}
}
