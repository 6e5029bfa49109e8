package ledger

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// checkQuota enforces the per-account daily mint limit. The window is fixed,
// not sliding: it opens on a mint and resets fully once 24h have passed since
// the account's last successful mint of this asset.
func (l *Ledger) checkQuota(ts int64, asset *Asset, account string, qty uint64) *types.Error {
	if asset.DailyMintLimit == 0 {
		return nil
	}

	minted := uint64(0)
	if t := l.mintTrackers[asset.ID][account]; t != nil && ts < t.LastMintTs+quotaWindowSeconds {
		minted = t.MintedInWindow
	}
	if qty > asset.DailyMintLimit || minted > asset.DailyMintLimit-qty {
		return types.NewQuotaExceededError(
			fmt.Errorf("daily mint limit for %s is %d, %d already minted in the current window",
				asset.Symbol, asset.DailyMintLimit, minted),
		)
	}
	return nil
}

// advanceQuota registers a successful governed mint against the tracker.
// Callers must have passed checkQuota with the same timestamp.
func (l *Ledger) advanceQuota(ts int64, asset *Asset, account string, qty uint64) {
	if asset.DailyMintLimit == 0 {
		return
	}

	trackers, ok := l.mintTrackers[asset.ID]
	if !ok {
		trackers = make(map[string]*MintTracker)
		l.mintTrackers[asset.ID] = trackers
	}
	t, ok := trackers[account]
	if !ok {
		t = &MintTracker{}
		trackers[account] = t
	} else if ts >= t.LastMintTs+quotaWindowSeconds {
		t.MintedInWindow = 0
	}
	t.MintedInWindow += qty
	t.LastMintTs = ts
}

// Mint creates qty new units of an asset for an account, subject to the
// supply cap and the per-account daily quota.
func (l *Ledger) Mint(actor, to string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applyMint(ts, to, assetID, qty); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindMint, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.To = to
	rec.Quantity = qty
	return rec, nil
}

func (l *Ledger) applyMint(ts int64, to string, assetID, qty uint64) *types.Error {
	if err := requireAccount("to", to); err != nil {
		return err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}
	if err := l.checkMintable(asset, qty); err != nil {
		return err
	}
	if err := l.checkQuota(ts, asset, to, qty); err != nil {
		return err
	}

	l.mintSupply(asset, to, qty)
	l.advanceQuota(ts, asset, to, qty)
	return nil
}

// EmergencyMint creates units without touching the daily quota tracker. The
// supply cap still holds: it protects the asset's scarcity, not its schedule.
func (l *Ledger) EmergencyMint(actor, to string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applyEmergencyMint(to, assetID, qty); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindEmergencyMint, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.To = to
	rec.Quantity = qty
	return rec, nil
}

func (l *Ledger) applyEmergencyMint(to string, assetID, qty uint64) *types.Error {
	if err := requireAccount("to", to); err != nil {
		return err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}
	if err := l.checkMintable(asset, qty); err != nil {
		return err
	}

	l.mintSupply(asset, to, qty)
	return nil
}

// ShopPurchase mints qty units to the buyer against payment at the asset's
// shop price. The payment moves from the buyer to the treasury in the
// reference asset; the mint side is quota-governed exactly like Mint. The
// purchase counts toward the buyer's season score and trading volume.
func (l *Ledger) ShopPurchase(buyer string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	totalPrice, err := l.applyShopPurchase(ts, buyer, assetID, qty)
	if err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindShopPurchase, ts, buyer)
	rec.AssetID = uint64Ptr(assetID)
	rec.To = buyer
	rec.Quantity = qty
	rec.UnitPrice = l.assets[assetID].Price
	rec.TotalPrice = totalPrice
	return rec, nil
}

func (l *Ledger) applyShopPurchase(ts int64, buyer string, assetID, qty uint64) (uint64, *types.Error) {
	if err := requireAccount("buyer", buyer); err != nil {
		return 0, err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return 0, err
	}
	if asset.ID == ReferenceAssetID {
		return 0, types.NewValidationFailedError(
			fmt.Errorf("%s is the payment asset, not a shop item", asset.Symbol),
		)
	}
	if asset.Price == 0 {
		return 0, types.NewValidationFailedError(
			fmt.Errorf("%s has no shop price", asset.Symbol),
		)
	}
	if err := l.checkMintable(asset, qty); err != nil {
		return 0, err
	}
	if err := l.checkQuota(ts, asset, buyer, qty); err != nil {
		return 0, err
	}

	total := sdkmath.NewIntFromUint64(asset.Price).Mul(sdkmath.NewIntFromUint64(qty))
	if !total.IsUint64() {
		return 0, types.NewValidationFailedError(
			fmt.Errorf("total price %s of %d x %s overflows", total, qty, asset.Symbol),
		)
	}
	totalPrice := total.Uint64()

	reference := l.assets[ReferenceAssetID]
	if bal := l.balanceOf(ReferenceAssetID, buyer); bal < totalPrice {
		return 0, types.NewInsufficientBalanceError(
			fmt.Errorf("purchase costs %d %s but %s holds %d",
				totalPrice, reference.Symbol, buyer, bal),
		)
	}

	l.debitBalance(ReferenceAssetID, buyer, totalPrice)
	l.creditBalance(ReferenceAssetID, l.params.TreasuryAccount, totalPrice)
	l.mintSupply(asset, buyer, qty)
	l.advanceQuota(ts, asset, buyer, qty)
	l.recordActivity(ts, buyer, asset, qty)
	l.addTradingVolume(buyer, totalPrice)
	return totalPrice, nil
}
