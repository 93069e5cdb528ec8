package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaturityErrorMessage(t *testing.T) {
	err := &MaturityError{RemainingSeconds: 42}
	require.Equal(t, "withdrawal proof has not matured: 42 seconds remaining", err.Error())
}

func TestSentinelsAreDistinct(t *testing.T) {
	require.False(t, errors.Is(ErrNotReady, ErrReverted))
	require.False(t, errors.Is(ErrReverted, ErrOutputRootMismatch))
	require.False(t, errors.Is(ErrNotReady, ErrOutputRootMismatch))
}

func TestWrappedSentinelUnwraps(t *testing.T) {
	wrapped := errors.Join(ErrReverted, errors.New("status 0"))
	require.True(t, errors.Is(wrapped, ErrReverted))
}
