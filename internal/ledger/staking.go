package ledger

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// stakingReward computes floor(qty * rateBps * elapsedSeconds / (year * 10000)).
// The intermediate product can exceed uint64, so it runs through sdkmath.
func stakingReward(qty, rateBps uint64, elapsedSeconds int64) (uint64, *types.Error) {
	if qty == 0 || rateBps == 0 || elapsedSeconds <= 0 {
		return 0, nil
	}

	num := sdkmath.NewIntFromUint64(qty).
		Mul(sdkmath.NewIntFromUint64(rateBps)).
		MulRaw(elapsedSeconds)
	reward := num.Quo(sdkmath.NewInt(secondsPerYear).MulRaw(bpsDenominator))
	if !reward.IsUint64() {
		return 0, types.NewValidationFailedError(
			fmt.Errorf("staking reward %s overflows", reward),
		)
	}
	return reward.Uint64(), nil
}

// Stake moves qty units from the account's spendable balance into the
// staking escrow. The position's start timestamp is overwritten on every
// additional stake, so staking incrementally restarts the reward clock for
// the whole position.
func (l *Ledger) Stake(account string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	if err := l.applyStake(ts, account, assetID, qty); err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindStake, ts, account)
	rec.AssetID = uint64Ptr(assetID)
	rec.From = account
	rec.Quantity = qty
	return rec, nil
}

func (l *Ledger) applyStake(ts int64, account string, assetID, qty uint64) *types.Error {
	if err := requireAccount("account", account); err != nil {
		return err
	}
	if err := requireQuantity(qty); err != nil {
		return err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return err
	}
	if asset.Class == types.ClassUnique && qty != 1 {
		return types.NewValidationFailedError(
			fmt.Errorf("unique asset %s is staked one at a time", asset.Symbol),
		)
	}
	if bal := l.balanceOf(assetID, account); bal < qty {
		return types.NewInsufficientBalanceError(
			fmt.Errorf("staking %d of %s but %s holds %d", qty, asset.Symbol, account, bal),
		)
	}

	l.debitBalance(assetID, account, qty)

	positions, ok := l.stakes[assetID]
	if !ok {
		positions = make(map[string]*StakePosition)
		l.stakes[assetID] = positions
	}
	pos, ok := positions[account]
	if !ok {
		pos = &StakePosition{}
		positions[account] = pos
	}
	pos.Quantity += qty
	pos.StartTs = ts
	l.totalStaked[assetID] += qty
	return nil
}

// Unstake returns qty units from escrow to the account's spendable balance
// and pays the accrued reward by minting the reference asset. A partial
// unstake keeps the position's start timestamp, so the remainder keeps
// accruing from the original stake time.
func (l *Ledger) Unstake(account string, assetID, qty uint64) (*types.Record, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	reward, err := l.applyUnstake(ts, account, assetID, qty)
	if err != nil {
		return nil, err
	}

	rec := l.nextRecord(types.KindUnstake, ts, account)
	rec.AssetID = uint64Ptr(assetID)
	rec.To = account
	rec.Quantity = qty
	rec.Reward = reward
	return rec, nil
}

func (l *Ledger) applyUnstake(ts int64, account string, assetID, qty uint64) (uint64, *types.Error) {
	if err := requireAccount("account", account); err != nil {
		return 0, err
	}
	if err := requireQuantity(qty); err != nil {
		return 0, err
	}
	asset, err := l.asset(assetID)
	if err != nil {
		return 0, err
	}

	pos := l.stakes[assetID][account]
	if pos == nil || pos.Quantity < qty {
		staked := uint64(0)
		if pos != nil {
			staked = pos.Quantity
		}
		return 0, types.NewInsufficientBalanceError(
			fmt.Errorf("unstaking %d of %s but %s has %d staked",
				qty, asset.Symbol, account, staked),
		)
	}

	elapsed := ts - pos.StartTs
	if elapsed < 0 {
		elapsed = 0
	}
	reward, err := stakingReward(qty, asset.RewardTier.AnnualRateBps(), elapsed)
	if err != nil {
		return 0, err
	}
	reference := l.assets[ReferenceAssetID]
	if reward > 0 {
		// validate the payout mint before any state moves
		if err := l.checkMintable(reference, reward); err != nil {
			return 0, err
		}
	}

	pos.Quantity -= qty
	if pos.Quantity == 0 {
		delete(l.stakes[assetID], account)
		if len(l.stakes[assetID]) == 0 {
			delete(l.stakes, assetID)
		}
	}
	l.totalStaked[assetID] -= qty
	if l.totalStaked[assetID] == 0 {
		delete(l.totalStaked, assetID)
	}
	l.creditBalance(assetID, account, qty)

	if reward > 0 {
		l.mintSupply(reference, account, reward)
		acc := l.accumulator(account)
		acc.StakingRewardsEarned = saturatingAdd(acc.StakingRewardsEarned, reward)
	}
	return reward, nil
}
