package ledger

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// List escrows qty units of a tradeable asset and opens a listing at the
// given unit price in the reference asset.
func (l *Ledger) List(seller string, assetID, qty, unitPrice uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	listingID, err := l.applyList(ts, seller, assetID, qty, unitPrice)
	if err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindListingCreated, ts, seller)
	rec.ListingID = uint64Ptr(listingID)
	rec.AssetID = uint64Ptr(assetID)
	rec.From = seller
	rec.Quantity = qty
	rec.UnitPrice = unitPrice
	return rec, nil
}

func (l *Ledger) applyList(ts int64, seller string, assetID, qty, unitPrice uint64) (uint64, *types.Error) {
	if err := requireAccount("seller", seller); err != nil {
		return 0, err
	}
	if err := requireQuantity(qty); err != nil {
		return 0, err
	}
	if unitPrice == 0 {
		return 0, types.NewValidationFailedError(
			fmt.Errorf("unit price must be greater than zero"),
		)
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return 0, err
	}
	if !asset.Tradeable {
		return 0, types.NewTradingDisabledError(
			fmt.Errorf("%s is not tradeable", asset.Symbol),
		)
	}
	if bal := l.balanceOf(assetID, seller); bal < qty {
		return 0, types.NewInsufficientBalanceError(
			fmt.Errorf("listing %d of %s but %s holds %d", qty, asset.Symbol, seller, bal),
		)
	}

	l.debitBalance(assetID, seller, qty)
	l.listedEscrow[assetID] += qty

	listing := &Listing{
		ID:        l.nextListingID,
		AssetID:   assetID,
		Seller:    seller,
		Remaining: qty,
		UnitPrice: unitPrice,
		Active:    true,
		CreatedAt: ts,
	}
	l.nextListingID++
	l.listings[listing.ID] = listing
	l.listingOrder = append(l.listingOrder, listing.ID)
	return listing.ID, nil
}

// PurchaseListing fills qty units of a listing. The buyer pays qty times the
// unit price in the reference asset; the fee share goes to the treasury and
// the rest to the seller, then the escrowed units move to the buyer. The fill
// counts toward both parties' season scores and trading volumes.
func (l *Ledger) PurchaseListing(buyer string, listingID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	listing, totalPrice, fee, err := l.applyPurchaseListing(ts, buyer, listingID, qty)
	if err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindListingFilled, ts, buyer)
	rec.ListingID = uint64Ptr(listingID)
	rec.AssetID = uint64Ptr(listing.AssetID)
	rec.From = listing.Seller
	rec.To = buyer
	rec.Quantity = qty
	rec.UnitPrice = listing.UnitPrice
	rec.TotalPrice = totalPrice
	rec.Fee = fee
	return rec, nil
}

func (l *Ledger) applyPurchaseListing(ts int64, buyer string, listingID, qty uint64) (*Listing, uint64, uint64, *types.Error) {
	if err := requireAccount("buyer", buyer); err != nil {
		return nil, 0, 0, err
	}
	if err := requireQuantity(qty); err != nil {
		return nil, 0, 0, err
	}
	listing, ok := l.listings[listingID]
	if !ok {
		return nil, 0, 0, types.NewNotFoundError(
			fmt.Errorf("listing %d does not exist", listingID),
		)
	}
	if !listing.Active {
		return nil, 0, 0, types.NewListingClosedError(
			fmt.Errorf("listing %d is closed", listingID),
		)
	}
	if qty > listing.Remaining {
		return nil, 0, 0, types.NewListingClosedError(
			fmt.Errorf("listing %d has %d remaining, requested %d",
				listingID, listing.Remaining, qty),
		)
	}
	if buyer == listing.Seller {
		return nil, 0, 0, types.NewSelfTradeError(
			fmt.Errorf("%s cannot buy their own listing", buyer),
		)
	}
	asset := l.assets[listing.AssetID]
	if !asset.Tradeable {
		return nil, 0, 0, types.NewTradingDisabledError(
			fmt.Errorf("trading in %s is disabled", asset.Symbol),
		)
	}

	total := sdkmath.NewIntFromUint64(listing.UnitPrice).Mul(sdkmath.NewIntFromUint64(qty))
	if !total.IsUint64() {
		return nil, 0, 0, types.NewValidationFailedError(
			fmt.Errorf("total price %s of listing %d fill overflows", total, listingID),
		)
	}
	totalPrice := total.Uint64()

	reference := l.assets[ReferenceAssetID]
	if bal := l.balanceOf(ReferenceAssetID, buyer); bal < totalPrice {
		return nil, 0, 0, types.NewInsufficientBalanceError(
			fmt.Errorf("fill costs %d %s but %s holds %d",
				totalPrice, reference.Symbol, buyer, bal),
		)
	}

	// fee = floor(total * feeBps / 10000), seller gets the remainder
	fee := total.MulRaw(int64(l.params.FeeBps)).QuoRaw(bpsDenominator).Uint64()

	listing.Remaining -= qty
	if listing.Remaining == 0 {
		listing.Active = false
	}
	l.listedEscrow[listing.AssetID] -= qty
	if l.listedEscrow[listing.AssetID] == 0 {
		delete(l.listedEscrow, listing.AssetID)
	}

	l.debitBalance(ReferenceAssetID, buyer, totalPrice)
	l.creditBalance(ReferenceAssetID, listing.Seller, totalPrice-fee)
	l.creditBalance(ReferenceAssetID, l.params.TreasuryAccount, fee)
	l.creditBalance(listing.AssetID, buyer, qty)

	l.recordActivity(ts, buyer, asset, qty)
	l.recordActivity(ts, listing.Seller, asset, qty)
	l.addTradingVolume(buyer, totalPrice)
	l.addTradingVolume(listing.Seller, totalPrice)
	return listing, totalPrice, fee, nil
}

// CancelListing closes a listing and returns its unsold escrow to the seller.
// Sellers cancel their own listings; the service passes force for moderation
// cancels it has already authorized.
func (l *Ledger) CancelListing(actor string, listingID uint64, force bool) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}

	ts := l.now()
	listing, returned, err := l.applyCancelListing(actor, listingID, force)
	if err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindListingCanceled, ts, actor)
	rec.ListingID = uint64Ptr(listingID)
	rec.AssetID = uint64Ptr(listing.AssetID)
	rec.To = listing.Seller
	rec.Quantity = returned
	return rec, nil
}

func (l *Ledger) applyCancelListing(actor string, listingID uint64, force bool) (*Listing, uint64, *types.Error) {
	listing, ok := l.listings[listingID]
	if !ok {
		return nil, 0, types.NewNotFoundError(
			fmt.Errorf("listing %d does not exist", listingID),
		)
	}
	if !listing.Active {
		return nil, 0, types.NewListingClosedError(
			fmt.Errorf("listing %d is already closed", listingID),
		)
	}
	if !force && actor != listing.Seller {
		return nil, 0, types.NewUnauthorizedError(
			fmt.Errorf("%s does not own listing %d", actor, listingID),
		)
	}

	returned := listing.Remaining
	listing.Active = false
	l.listedEscrow[listing.AssetID] -= returned
	if l.listedEscrow[listing.AssetID] == 0 {
		delete(l.listedEscrow, listing.AssetID)
	}
	l.creditBalance(listing.AssetID, listing.Seller, returned)
	return listing, returned, nil
}
