package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

func TestTimeSeriesIndex_RoundTrip(t *testing.T) {
	idx := TimeSeriesIndex{
		FileOffset:         1024,
		StartTime:          5_000_000,
		StartSample:        100,
		NumberOfSamples:    50,
		BlockBytes:         400,
		MaximumSampleValue: 200,
		MinimumSampleValue: -300,
		REDBlockFlags:      format.REDDiscontinuityMask,
	}
	copy(idx.REDBlockDiscretionaryRegion[:], []byte{1, 2, 3, 4, 5, 6, 7, 8})

	data := idx.Bytes(engine)
	require.Len(t, data, format.TimeSeriesIndexBytes)

	parsed, err := ParseTimeSeriesIndex(data, engine)
	require.NoError(t, err)
	require.Equal(t, idx, parsed)
}

func TestTimeSeriesIndex_RejectsWrongLength(t *testing.T) {
	_, err := ParseTimeSeriesIndex(make([]byte, 10), engine)
	require.ErrorIs(t, err, errs.InvalidFormat)
}
