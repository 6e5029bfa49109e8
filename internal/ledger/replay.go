package ledger

import (
	"fmt"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// Apply replays one journal record against the aggregate. Replay runs the
// same state-transition code as live operations with the record's own
// timestamp, so a journal replayed over the same starting state reproduces
// the aggregate exactly. Records must arrive in sequence order with no gaps.
//
// Role and ownership checks are not repeated: they passed when the record
// was written, and replay must not re-litigate them against today's config.
func (l *Ledger) Apply(rec *types.Record) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec == nil {
		return types.NewInternalServiceError(fmt.Errorf("cannot apply nil record"))
	}
	if rec.Seq != l.seq+1 {
		return types.NewInternalServiceError(
			fmt.Errorf("journal gap: record seq %d on top of ledger seq %d", rec.Seq, l.seq),
		)
	}

	if err := l.applyRecord(rec); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("replaying %s record seq %d: %w", rec.Kind, rec.Seq, err.Err),
		)
	}
	l.seq = rec.Seq
	return nil
}

func (l *Ledger) applyRecord(rec *types.Record) *types.Error {
	switch rec.Kind {
	case types.KindMint:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		return l.applyMint(rec.Timestamp, rec.To, assetID, rec.Quantity)

	case types.KindEmergencyMint:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		return l.applyEmergencyMint(rec.To, assetID, rec.Quantity)

	case types.KindBurn:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		return l.applyBurn(rec.From, assetID, rec.Quantity)

	case types.KindTransfer:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		return l.applyTransfer(rec.From, rec.To, assetID, rec.Quantity)

	case types.KindBatchTransfer:
		return l.applyBatchTransfer(rec.From, rec.To, rec.AssetIDs, rec.Quantities)

	case types.KindOperatorSet:
		approved, err := requiredField(rec.Approved, rec.Kind, "approved")
		if err != nil {
			return err
		}
		return l.applyOperatorSet(rec.From, rec.Operator, approved)

	case types.KindShopPurchase:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		totalPrice, err := l.applyShopPurchase(rec.Timestamp, rec.To, assetID, rec.Quantity)
		if err != nil {
			return err
		}
		if totalPrice != rec.TotalPrice {
			return types.NewInternalServiceError(
				fmt.Errorf("shop purchase recomputed price %d, record says %d",
					totalPrice, rec.TotalPrice),
			)
		}
		return nil

	case types.KindStake:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		return l.applyStake(rec.Timestamp, rec.From, assetID, rec.Quantity)

	case types.KindUnstake:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		reward, err := l.applyUnstake(rec.Timestamp, rec.To, assetID, rec.Quantity)
		if err != nil {
			return err
		}
		if reward != rec.Reward {
			return types.NewInternalServiceError(
				fmt.Errorf("unstake recomputed reward %d, record says %d",
					reward, rec.Reward),
			)
		}
		return nil

	case types.KindListingCreated:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		wantID, err := requiredField(rec.ListingID, rec.Kind, "listing_id")
		if err != nil {
			return err
		}
		listingID, err := l.applyList(rec.Timestamp, rec.From, assetID, rec.Quantity, rec.UnitPrice)
		if err != nil {
			return err
		}
		if listingID != wantID {
			return types.NewInternalServiceError(
				fmt.Errorf("listing replayed as id %d, record says %d", listingID, wantID),
			)
		}
		return nil

	case types.KindListingFilled:
		listingID, err := requiredField(rec.ListingID, rec.Kind, "listing_id")
		if err != nil {
			return err
		}
		_, totalPrice, fee, err := l.applyPurchaseListing(rec.Timestamp, rec.To, listingID, rec.Quantity)
		if err != nil {
			return err
		}
		// the fee depends on the configured rate; a mismatch means the rate
		// changed after this record was written
		if totalPrice != rec.TotalPrice || fee != rec.Fee {
			return types.NewInternalServiceError(
				fmt.Errorf("fill recomputed total %d fee %d, record says total %d fee %d",
					totalPrice, fee, rec.TotalPrice, rec.Fee),
			)
		}
		return nil

	case types.KindListingCanceled:
		listingID, err := requiredField(rec.ListingID, rec.Kind, "listing_id")
		if err != nil {
			return err
		}
		_, _, err = l.applyCancelListing(rec.Actor, listingID, true)
		return err

	case types.KindSeasonStarted:
		season, err := requiredField(rec.Season, rec.Kind, "season")
		if err != nil {
			return err
		}
		if err := l.applyStartSeason(rec.Timestamp); err != nil {
			return err
		}
		if l.season.Number != season {
			return types.NewInternalServiceError(
				fmt.Errorf("season replayed as %d, record says %d", l.season.Number, season),
			)
		}
		return nil

	case types.KindPriceSet:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		price, err := requiredField(rec.Price, rec.Kind, "price")
		if err != nil {
			return err
		}
		return l.applySetPrice(assetID, price)

	case types.KindDailyLimitSet:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		limit, err := requiredField(rec.Limit, rec.Kind, "limit")
		if err != nil {
			return err
		}
		return l.applySetDailyLimit(assetID, limit)

	case types.KindTradingSet:
		assetID, err := requiredField(rec.AssetID, rec.Kind, "asset_id")
		if err != nil {
			return err
		}
		enabled, err := requiredField(rec.Enabled, rec.Kind, "enabled")
		if err != nil {
			return err
		}
		return l.applySetTradingEnabled(assetID, enabled)

	default:
		return types.NewInternalServiceError(
			fmt.Errorf("unknown record kind %q", rec.Kind),
		)
	}
}

func requiredField[T any](p *T, kind types.RecordKind, name string) (T, *types.Error) {
	if p == nil {
		var zero T
		return zero, types.NewInternalServiceError(
			fmt.Errorf("%s record is missing %s", kind, name),
		)
	}
	return *p, nil
}
