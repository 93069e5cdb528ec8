package action

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestValidDepositParams(t *testing.T) {
	recipient := common.HexToAddress("0x00000000000000000000000000000000000abc")

	tests := []struct {
		name   string
		params DepositParams
		want   bool
	}{
		{"valid", DepositParams{InputAmount: big.NewInt(100), OutputAmount: big.NewInt(100), Recipient: recipient}, true},
		{"over-quoted output is fine", DepositParams{InputAmount: big.NewInt(100), OutputAmount: big.NewInt(200), Recipient: recipient}, true},
		{"zero input", DepositParams{InputAmount: big.NewInt(0), OutputAmount: big.NewInt(100), Recipient: recipient}, false},
		{"nil input", DepositParams{OutputAmount: big.NewInt(100), Recipient: recipient}, false},
		{"output below input", DepositParams{InputAmount: big.NewInt(100), OutputAmount: big.NewInt(99), Recipient: recipient}, false},
		{"nil output", DepositParams{InputAmount: big.NewInt(100), Recipient: recipient}, false},
		{"zero recipient", DepositParams{InputAmount: big.NewInt(100), OutputAmount: big.NewInt(100)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, validDepositParams(tt.params))
		})
	}
}
