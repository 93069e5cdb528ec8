package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunksCoversRangeExactly(t *testing.T) {
	chunks := Chunks(0, 25_000)
	require.Equal(t, []Range{
		{From: 0, To: 9_499},
		{From: 9_500, To: 18_999},
		{From: 19_000, To: 25_000},
	}, chunks)
}

func TestChunksSingleChunk(t *testing.T) {
	chunks := Chunks(100, 200)
	require.Equal(t, []Range{{From: 100, To: 200}}, chunks)
}

func TestChunksInvalidRange(t *testing.T) {
	require.Nil(t, Chunks(10, 5))
}

func TestWithRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestWithRetryExhausts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return errors.New("always fails")
	})
	require.Error(t, err)
	require.Equal(t, RetryAttempts, attempts)
}

func TestEachInvalidRangeIsError(t *testing.T) {
	err := Each(context.Background(), 10, 5, func(context.Context, Range) error { return nil })
	require.Error(t, err)
}

func TestEachVisitsEveryChunk(t *testing.T) {
	var seen []Range
	err := Each(context.Background(), 0, 20_000, func(_ context.Context, r Range) error {
		seen = append(seen, r)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, Chunks(0, 20_000), seen)
}
