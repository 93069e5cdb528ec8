package action

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestValidWithdrawParams(t *testing.T) {
	target := common.HexToAddress("0x00000000000000000000000000000000000abc")

	require.True(t, validWithdrawParams(big.NewInt(1), target))
	require.False(t, validWithdrawParams(big.NewInt(0), target))
	require.False(t, validWithdrawParams(big.NewInt(-1), target))
	require.False(t, validWithdrawParams(nil, target))
	require.False(t, validWithdrawParams(big.NewInt(1), common.Address{}))
}
