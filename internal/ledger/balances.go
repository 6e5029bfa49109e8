package ledger

import (
	"fmt"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// checkMintable validates the supply rules for adding qty units of an asset:
// quantity and cap checks plus the Unique-class rules (supply never above one,
// minted strictly one at a time).
func (l *Ledger) checkMintable(asset *Asset, qty uint64) *types.Error {
	if err := requireQuantity(qty); err != nil {
		return err
	}

	if asset.Class == types.ClassUnique {
		if qty != 1 {
			return types.NewValidationFailedError(
				fmt.Errorf("unique asset %s is minted one at a time", asset.Symbol),
			)
		}
		if asset.CurrentSupply >= 1 {
			return types.NewSupplyCapExceededError(
				fmt.Errorf("unique asset %s is already minted", asset.Symbol),
			)
		}
		return nil
	}

	if asset.MaxSupply > 0 {
		if qty > asset.MaxSupply || asset.CurrentSupply > asset.MaxSupply-qty {
			return types.NewSupplyCapExceededError(
				fmt.Errorf("minting %d of %s exceeds max supply %d (current %d)",
					qty, asset.Symbol, asset.MaxSupply, asset.CurrentSupply),
			)
		}
		return nil
	}

	// unbounded assets still live in uint64 space
	if asset.CurrentSupply > ^uint64(0)-qty {
		return types.NewValidationFailedError(
			fmt.Errorf("minting %d of %s overflows the supply counter", qty, asset.Symbol),
		)
	}
	return nil
}

// mintSupply performs the already-validated mint mutation.
func (l *Ledger) mintSupply(asset *Asset, to string, qty uint64) {
	asset.CurrentSupply += qty
	l.creditBalance(asset.ID, to, qty)
}

// requireOwnerOrOperator lets an account act on its own balance or lets an
// approved operator act on its behalf. Role checks happen before the ledger;
// this is balance-level delegation, part of the aggregate state.
func (l *Ledger) requireOwnerOrOperator(actor, owner string) *types.Error {
	if actor == owner {
		return nil
	}
	if l.operators[owner][actor] {
		return nil
	}
	return types.NewUnauthorizedError(
		fmt.Errorf("%s is not an approved operator of %s", actor, owner),
	)
}

// Burn destroys qty units from an account's spendable balance and reduces
// current supply. The actor must be the owner or an approved operator.
func (l *Ledger) Burn(actor, from string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}
	if err := l.requireOwnerOrOperator(actor, from); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applyBurn(from, assetID, qty); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindBurn, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.From = from
	rec.Quantity = qty
	return rec, nil
}

func (l *Ledger) applyBurn(from string, assetID, qty uint64) *types.Error {
	if err := requireAccount("from", from); err != nil {
		return err
	}
	if err := requireQuantity(qty); err != nil {
		return err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}

	if bal := l.balanceOf(assetID, from); bal < qty {
		return types.NewInsufficientBalanceError(
			fmt.Errorf("burning %d of %s but %s holds %d", qty, asset.Symbol, from, bal),
		)
	}

	l.debitBalance(assetID, from, qty)
	asset.CurrentSupply -= qty
	return nil
}

// Transfer moves qty units between spendable balances. Both balances update
// or neither does. The actor must be the owner or an approved operator.
func (l *Ledger) Transfer(actor, from, to string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}
	if err := l.requireOwnerOrOperator(actor, from); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applyTransfer(from, to, assetID, qty); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindTransfer, ts, actor)
	rec.AssetID = uint64Ptr(assetID)
	rec.From = from
	rec.To = to
	rec.Quantity = qty
	return rec, nil
}

func (l *Ledger) applyTransfer(from, to string, assetID, qty uint64) *types.Error {
	if err := requireAccount("from", from); err != nil {
		return err
	}
	if err := requireAccount("to", to); err != nil {
		return err
	}
	if err := requireQuantity(qty); err != nil {
		return err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}

	if bal := l.balanceOf(assetID, from); bal < qty {
		return types.NewInsufficientBalanceError(
			fmt.Errorf("transferring %d of %s but %s holds %d", qty, asset.Symbol, from, bal),
		)
	}

	l.debitBalance(assetID, from, qty)
	l.creditBalance(assetID, to, qty)
	return nil
}

// BatchTransfer moves several asset quantities between the same two accounts
// in one atomic operation: every leg is validated, including cumulative
// debits per asset, before any balance moves.
func (l *Ledger) BatchTransfer(actor, from, to string, assetIDs, quantities []uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := requireAccount("actor", actor); err != nil {
		return nil, err
	}
	if err := l.requireOwnerOrOperator(actor, from); err != nil {
		return nil, err
	}

	ts := l.now()
	if err := l.applyBatchTransfer(from, to, assetIDs, quantities); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindBatchTransfer, ts, actor)
	rec.From = from
	rec.To = to
	rec.AssetIDs = append([]uint64(nil), assetIDs...)
	rec.Quantities = append([]uint64(nil), quantities...)
	return rec, nil
}

func (l *Ledger) applyBatchTransfer(from, to string, assetIDs, quantities []uint64) *types.Error {
	if err := requireAccount("from", from); err != nil {
		return err
	}
	if err := requireAccount("to", to); err != nil {
		return err
	}
	if len(assetIDs) == 0 || len(assetIDs) != len(quantities) {
		return types.NewValidationFailedError(
			fmt.Errorf("batch legs mismatch: %d assets, %d quantities",
				len(assetIDs), len(quantities)),
		)
	}

	// cumulative debit per asset: the same asset may appear in several legs
	required := make(map[uint64]uint64, len(assetIDs))
	for i, assetID := range assetIDs {
		qty := quantities[i]
		if err := requireQuantity(qty); err != nil {
			return err
		}
		if _, err := l.asset(assetID); err != nil {
			return err
		}
		if required[assetID] > ^uint64(0)-qty {
			return types.NewValidationFailedError(
				fmt.Errorf("batch quantity overflow for asset %d", assetID),
			)
		}
		required[assetID] += qty
	}
	for assetID, qty := range required {
		if bal := l.balanceOf(assetID, from); bal < qty {
			return types.NewInsufficientBalanceError(
				fmt.Errorf("batch needs %d of asset %d but %s holds %d",
					qty, assetID, from, bal),
			)
		}
	}

	for i, assetID := range assetIDs {
		l.debitBalance(assetID, from, quantities[i])
		l.creditBalance(assetID, to, quantities[i])
	}
	return nil
}

// ApproveOperator grants or revokes the operator's right to move the owner's
// balances. Only the owner manages their own approvals.
func (l *Ledger) ApproveOperator(owner, operator string, approved bool) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	if err := l.applyOperatorSet(owner, operator, approved); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindOperatorSet, ts, owner)
	rec.From = owner
	rec.Operator = operator
	rec.Approved = boolPtr(approved)
	return rec, nil
}

func (l *Ledger) applyOperatorSet(owner, operator string, approved bool) *types.Error {
	if err := requireAccount("owner", owner); err != nil {
		return err
	}
	if err := requireAccount("operator", operator); err != nil {
		return err
	}
	if owner == operator {
		return types.NewValidationFailedError(
			fmt.Errorf("cannot approve self as operator"),
		)
	}

	if approved {
		ops, ok := l.operators[owner]
		if !ok {
			ops = make(map[string]bool)
			l.operators[owner] = ops
		}
		ops[operator] = true
		return nil
	}

	delete(l.operators[owner], operator)
	if len(l.operators[owner]) == 0 {
		delete(l.operators, owner)
	}
	return nil
}
