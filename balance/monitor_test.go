package balance

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// ProjectedBalance is the formula in spec.md's §4.6/§8: actual spoke-pool
// balance minus the in-flight deposit total, floored at zero.
func ProjectedBalance(actual, inflight *big.Int) *big.Int {
	projected := new(big.Int).Sub(actual, inflight)
	if projected.Sign() < 0 {
		return big.NewInt(0)
	}
	return projected
}

func TestProjectedBalanceFormula(t *testing.T) {
	cases := []struct {
		name             string
		actual, inflight int64
		want             int64
	}{
		{"no inflight", 80, 0, 80},
		{"partial drawdown", 100, 10, 90},
		{"inflight exceeds actual floors at zero", 5, 20, 0},
		{"exact match floors at zero", 50, 50, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectedBalance(big.NewInt(tc.actual), big.NewInt(tc.inflight))
			require.Equal(t, big.NewInt(tc.want), got)
		})
	}
}
