package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckMaturityNotYetMature(t *testing.T) {
	remaining, matured := checkMaturity(1000, 604800, 1000+604800-60)
	require.False(t, matured)
	require.Equal(t, uint64(60), remaining)
}

func TestCheckMaturityExactlyAtDelay(t *testing.T) {
	_, matured := checkMaturity(1000, 604800, 1000+604800)
	require.True(t, matured)
}

func TestCheckMaturityPastDelay(t *testing.T) {
	remaining, matured := checkMaturity(1000, 604800, 1000+604800+3600)
	require.True(t, matured)
	require.Equal(t, uint64(0), remaining)
}
