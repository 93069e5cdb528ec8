package orchestrator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestWithdrawAmount(t *testing.T) {
	t.Run("below threshold skips", func(t *testing.T) {
		_, ok := withdrawAmount(eth(50), eth(75), eth(1))
		require.False(t, ok)
	})

	t.Run("at threshold skips", func(t *testing.T) {
		_, ok := withdrawAmount(eth(75), eth(75), eth(1))
		require.False(t, ok)
	})

	t.Run("above threshold withdraws balance minus buffer", func(t *testing.T) {
		amount, ok := withdrawAmount(eth(80), eth(75), eth(1))
		require.True(t, ok)
		require.Equal(t, eth(79), amount)
	})

	t.Run("buffer consumes entire balance skips", func(t *testing.T) {
		_, ok := withdrawAmount(big.NewInt(1), big.NewInt(0), big.NewInt(1))
		require.False(t, ok)
	})
}

func TestProjectedSpokePoolBalance(t *testing.T) {
	require.Equal(t, eth(10), projectedSpokePoolBalance(eth(30), eth(20)))
	require.Equal(t, big.NewInt(0), projectedSpokePoolBalance(eth(10), eth(20)))
	require.Equal(t, big.NewInt(0), projectedSpokePoolBalance(eth(10), eth(10)))
}

func TestDepositAmount(t *testing.T) {
	t.Run("above target skips", func(t *testing.T) {
		_, ok, err := depositAmount(eth(80), eth(75), eth(20), eth(100))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("below target deposits down to floor", func(t *testing.T) {
		amount, ok, err := depositAmount(eth(30), eth(75), eth(20), eth(100))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, eth(10), amount)
	})

	t.Run("projected already at or below floor skips", func(t *testing.T) {
		_, ok, err := depositAmount(eth(20), eth(75), eth(20), eth(100))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("insufficient l1 balance errors", func(t *testing.T) {
		_, ok, err := depositAmount(eth(30), eth(75), eth(20), eth(5))
		require.ErrorIs(t, err, ErrInsufficientL1Balance)
		require.False(t, ok)
	})
}

func TestBlocksAgo(t *testing.T) {
	require.Equal(t, uint64(900), blocksAgo(1000, 1200, 12))
	require.Equal(t, uint64(0), blocksAgo(10, 1_000_000, 12))
	require.Equal(t, uint64(500), blocksAgo(500, 100, 0))
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "skipped", OutcomeSkipped.String())
	require.Equal(t, "succeeded", OutcomeSucceeded.String())
	require.Equal(t, "failed", OutcomeFailed.String())
	require.Equal(t, "unknown", Outcome(99).String())
}

func TestCycleResultSuccess(t *testing.T) {
	require.True(t, CycleResult{ProcessWithdrawals: OutcomeSkipped, InitiateWithdrawal: OutcomeSucceeded, Deposit: OutcomeSkipped}.Success())
	require.False(t, CycleResult{ProcessWithdrawals: OutcomeFailed, InitiateWithdrawal: OutcomeSucceeded, Deposit: OutcomeSkipped}.Success())
	require.False(t, CycleResult{ProcessWithdrawals: OutcomeSkipped, InitiateWithdrawal: OutcomeSkipped, Deposit: OutcomeFailed}.Success())
}

