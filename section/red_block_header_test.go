package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

func TestREDBlockHeader_RoundTrip(t *testing.T) {
	h := REDBlockHeader{
		BlockCRC:         0xDEADBEEF,
		DetrendSlope:     1.5,
		DetrendIntercept: -0.5,
		ScaleFactor:      1.0,
		DifferenceBytes:  128,
		NumberOfSamples:  100,
		BlockBytes:       format.REDBlockHeaderBytes + 128,
		StartTime:        42,
	}
	h.SetDiscontinuity(true)
	h.SetLevel2Encrypted(true)

	data := h.Bytes(engine)
	require.Len(t, data, format.REDBlockHeaderBytes)

	parsed, err := ParseREDBlockHeader(data, engine)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
	require.True(t, parsed.IsDiscontinuity())
	require.True(t, parsed.IsLevel2Encrypted())
	require.False(t, parsed.IsLevel1Encrypted())
}

func TestREDBlockHeader_FlagSetters(t *testing.T) {
	var h REDBlockHeader
	require.False(t, h.IsDiscontinuity())

	h.SetDiscontinuity(true)
	require.True(t, h.IsDiscontinuity())

	h.SetDiscontinuity(false)
	require.False(t, h.IsDiscontinuity())
}

func TestREDBlockHeader_RejectsTooShort(t *testing.T) {
	_, err := ParseREDBlockHeader(make([]byte, 10), engine)
	require.ErrorIs(t, err, errs.InvalidFormat)
}

func TestREDBlockHeader_AcceptsPayloadTrailingHeader(t *testing.T) {
	h := REDBlockHeader{NumberOfSamples: 3}
	data := append(h.Bytes(engine), []byte{1, 2, 3}...)

	parsed, err := ParseREDBlockHeader(data, engine)
	require.NoError(t, err)
	require.Equal(t, uint32(3), parsed.NumberOfSamples)
}
