package red

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeStatistics_Normalizes(t *testing.T) {
	// Symbol 0 maps from diff == -128, and appears far more often than any
	// other value, so it must land on 255 after normalization.
	diffs := make([]int32, 0, 20)
	for i := 0; i < 16; i++ {
		diffs = append(diffs, -128)
	}
	diffs = append(diffs, 1, 2, 3, 4)

	stats := computeStatistics(diffs)
	require.Equal(t, byte(255), stats[0])
	for _, d := range []int32{1, 2, 3, 4} {
		require.NotZero(t, stats[byte(d+128)&0xFF], "non-zero count must stay non-zero after normalization")
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := computeStatistics(nil)
	for _, v := range stats {
		require.Zero(t, v)
	}
}
