package deposit

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestBlocksAgoClampsAtZero(t *testing.T) {
	require.Equal(t, uint64(0), blocksAgo(100, 43_200, 12)) // 3600 blocks of lookback, head only 100
}

func TestBlocksAgoComputesWindow(t *testing.T) {
	require.Equal(t, uint64(9_000), blocksAgo(10_000, 12_000, 12)) // 1000 blocks of lookback
}

func TestBlocksAgoZeroBlockTimeIsNoop(t *testing.T) {
	require.Equal(t, uint64(500), blocksAgo(500, 1, 0))
}

// filterUnfilled mirrors the loop in GetInFlightDeposits: a deposit is
// in-flight iff its DepositID does not appear in the filled set.
func filterUnfilled(deposits []InFlight, filled map[uint32]bool) []InFlight {
	var out []InFlight
	for _, d := range deposits {
		if filled[d.DepositID] {
			continue
		}
		out = append(out, d)
	}
	return out
}

func TestDepositCorrelationExcludesFilledDeposit(t *testing.T) {
	depositor := common.HexToAddress("0x00000000000000000000000000000000000abc")
	deposits := []InFlight{
		{DepositID: 1, OriginChainID: big.NewInt(130), InputAmount: big.NewInt(100), Depositor: depositor},
		{DepositID: 2, OriginChainID: big.NewInt(130), InputAmount: big.NewInt(200), Depositor: depositor},
	}

	filled := map[uint32]bool{1: true}

	inflight := filterUnfilled(deposits, filled)

	require.Len(t, inflight, 1)
	require.Equal(t, uint32(2), inflight[0].DepositID)
}

func TestDepositCorrelationAllFilledYieldsEmpty(t *testing.T) {
	deposits := []InFlight{{DepositID: 1}, {DepositID: 2}}
	filled := map[uint32]bool{1: true, 2: true}

	require.Empty(t, filterUnfilled(deposits, filled))
}
