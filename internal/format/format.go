package format

import (
	"fmt"
	"math/big"
	"strings"
)

func FormatWei(amount *big.Int) string {
	return FormatBigInt(amount, 18) // Ethereum uses 18 decimals
}

// WeiToEth converts a wei amount to its ETH value as a float64, for metrics
// gauges where the small precision loss of a float is acceptable and the
// readability of ETH-denominated series is not.
func WeiToEth(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(amount), big.NewFloat(1e18))
	f, _ := eth.Float64()
	return f
}

// FormatBigInt renders amount as a fixed-point decimal string with
// baseDecimals of precision, trimming trailing fractional zeros (and the
// point itself when the value is a whole number).
func FormatBigInt(amount *big.Int, baseDecimals int) string {
	if amount == nil {
		return "0"
	}

	value := new(big.Int).Abs(amount)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(baseDecimals)), nil)
	intPart, fracPart := new(big.Int).QuoRem(value, divisor, new(big.Int))

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}

	if fracPart.Sign() == 0 {
		return sign + intPart.String()
	}

	fracStr := fracPart.String()
	fracStr = strings.Repeat("0", baseDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")

	return fmt.Sprintf("%s%s.%s", sign, intPart.String(), fracStr)
}
