package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

func TestStake(t *testing.T) {
	t.Run("moves balance into escrow", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 100)

		_, err := l.Stake("alice", AssetIronSword, 60)
		requireOK(t, err)

		assert.Equal(t, uint64(40), balance(t, l, "alice", AssetIronSword))
		info, serr := l.StakingInfo("alice", AssetIronSword)
		requireOK(t, serr)
		assert.Equal(t, uint64(60), info.Staked)
		assert.Equal(t, uint64(60), info.TotalStaked)
		assert.Equal(t, testStart.Unix(), info.StakeStartTs)
	})

	t.Run("rejects more than the spendable balance", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 10)

		_, err := l.Stake("alice", AssetIronSword, 11)
		requireCode(t, err, types.InsufficientBalance)
	})

	t.Run("unique assets stake one at a time", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "alice", AssetEmberCrown, 1)

		_, err := l.Stake("alice", AssetEmberCrown, 2)
		requireCode(t, err, types.ValidationError)

		_, err = l.Stake("alice", AssetEmberCrown, 1)
		requireOK(t, err)
	})

	t.Run("additional stake restarts the reward clock", func(t *testing.T) {
		l, clk := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 100)

		_, err := l.Stake("alice", AssetIronSword, 50)
		requireOK(t, err)

		clk.Advance(100 * 24 * time.Hour)
		_, err = l.Stake("alice", AssetIronSword, 10)
		requireOK(t, err)

		info, serr := l.StakingInfo("alice", AssetIronSword)
		requireOK(t, serr)
		assert.Equal(t, uint64(60), info.Staked)
		assert.Equal(t, clk.Now().Unix(), info.StakeStartTs)
		assert.Zero(t, info.PendingReward)
	})
}

func TestUnstake(t *testing.T) {
	t.Run("round trip at the same instant pays nothing", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 100)

		_, err := l.Stake("alice", AssetIronSword, 100)
		requireOK(t, err)
		rec, err := l.Unstake("alice", AssetIronSword, 100)
		requireOK(t, err)

		assert.Zero(t, rec.Reward)
		assert.Equal(t, uint64(100), balance(t, l, "alice", AssetIronSword))
		assert.Equal(t, uint64(0), balance(t, l, "alice", AssetEmber))
	})

	t.Run("a full year at 1000 bps pays ten percent of ten percent", func(t *testing.T) {
		// 100 units staked at the rare tier (1000 bps) for exactly 365 days:
		// floor(100 * 1000 * year / (year * 10000)) = 10
		l, clk := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 100)

		_, err := l.Stake("alice", AssetIronSword, 100)
		requireOK(t, err)

		clk.Advance(365 * 24 * time.Hour)
		rec, err := l.Unstake("alice", AssetIronSword, 100)
		requireOK(t, err)

		assert.Equal(t, uint64(10), rec.Reward)
		assert.Equal(t, uint64(10), balance(t, l, "alice", AssetEmber))
		assert.Equal(t, uint64(100), balance(t, l, "alice", AssetIronSword))

		// the payout is minted, so the reference supply grows with it
		ember, gerr := l.GetAsset(AssetEmber)
		requireOK(t, gerr)
		assert.Equal(t, uint64(10), ember.CurrentSupply)

		stats, perr := l.GetPlayerStats("alice")
		requireOK(t, perr)
		assert.Equal(t, uint64(10), stats.StakingRewardsEarned)
	})

	t.Run("reward is floored", func(t *testing.T) {
		// 1 legendary unit for a year earns 2000 bps of 1, which floors to 0
		l, clk := newTestLedger(t)
		fund(t, l, "alice", AssetEmberCrown, 1)

		_, err := l.Stake("alice", AssetEmberCrown, 1)
		requireOK(t, err)
		clk.Advance(365 * 24 * time.Hour)
		rec, err := l.Unstake("alice", AssetEmberCrown, 1)
		requireOK(t, err)
		assert.Zero(t, rec.Reward)
	})

	t.Run("partial unstake keeps the original start time", func(t *testing.T) {
		l, clk := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 100)

		_, err := l.Stake("alice", AssetIronSword, 100)
		requireOK(t, err)

		clk.Advance(365 * 24 * time.Hour)
		rec, err := l.Unstake("alice", AssetIronSword, 40)
		requireOK(t, err)
		// floor(40 * 1000 * year / (year * 10000)) = 4
		assert.Equal(t, uint64(4), rec.Reward)

		info, serr := l.StakingInfo("alice", AssetIronSword)
		requireOK(t, serr)
		assert.Equal(t, uint64(60), info.Staked)
		assert.Equal(t, testStart.Unix(), info.StakeStartTs)

		// the remainder keeps accruing from the original stake time
		clk.Advance(365 * 24 * time.Hour)
		rec, err = l.Unstake("alice", AssetIronSword, 60)
		requireOK(t, err)
		// floor(60 * 1000 * 2*year / (year * 10000)) = 12
		assert.Equal(t, uint64(12), rec.Reward)
	})

	t.Run("rejects more than the staked quantity", func(t *testing.T) {
		l, _ := newTestLedger(t)
		fund(t, l, "alice", AssetIronSword, 100)

		_, err := l.Unstake("alice", AssetIronSword, 1)
		requireCode(t, err, types.InsufficientBalance)

		_, err = l.Stake("alice", AssetIronSword, 50)
		requireOK(t, err)
		_, err = l.Unstake("alice", AssetIronSword, 51)
		requireCode(t, err, types.InsufficientBalance)
	})
}

func TestStakingInfoPendingReward(t *testing.T) {
	l, clk := newTestLedger(t)
	fund(t, l, "alice", AssetIronSword, 200)

	_, err := l.Stake("alice", AssetIronSword, 200)
	requireOK(t, err)

	clk.Advance(365 * 24 * time.Hour / 2)
	info, serr := l.StakingInfo("alice", AssetIronSword)
	requireOK(t, serr)
	// floor(200 * 1000 * half year / (year * 10000)) = 10
	assert.Equal(t, uint64(10), info.PendingReward)

	// the query does not mutate anything
	require.NoError(t, l.CheckInvariants())
	info2, serr := l.StakingInfo("alice", AssetIronSword)
	requireOK(t, serr)
	assert.Equal(t, info, info2)
}

func TestStakingRewardMath(t *testing.T) {
	year := int64(365 * 24 * 60 * 60)

	cases := []struct {
		name    string
		qty     uint64
		rateBps uint64
		elapsed int64
		want    uint64
	}{
		{"zero elapsed", 100, 1000, 0, 0},
		{"zero quantity", 0, 1000, year, 0},
		{"one year rare", 100, 1000, year, 10},
		{"one year default", 100, 500, year, 5},
		{"one year legendary", 100, 2000, year, 20},
		{"half year epic", 1_000, 1500, year / 2, 75},
		{"floors fractional rewards", 1, 1000, year, 0},
		{"large position does not overflow", 1 << 40, 2000, 10 * year, 2199023255552},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := stakingReward(tc.qty, tc.rateBps, tc.elapsed)
			requireOK(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
