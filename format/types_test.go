package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileType_String(t *testing.T) {
	cases := map[FileType]string{
		SessionDirectoryType:           "mefd",
		TimeSeriesChannelDirectoryType: "timd",
		TimeSeriesMetadataFileType:     "tmet",
		TimeSeriesDataFileType:         "tdat",
		TimeSeriesIndicesFileType:      "tidx",
		VideoChannelDirectoryType:      "vidd",
		FileType(0xffffffff):           "unknown",
	}
	for ft, want := range cases {
		require.Equal(t, want, ft.String())
	}
}

func TestREDSentinels_LegalRangeExcludesReserved(t *testing.T) {
	require.Less(t, REDMaximumSampleValue, REDPositiveInfinity)
	require.Greater(t, REDMinimumSampleValue, REDNaN)
	require.Greater(t, REDMinimumSampleValue, REDNegativeInfinity)
	require.Equal(t, int32(-2147483648), REDNaN)
	require.Equal(t, int32(2147483647), REDPositiveInfinity)
}

func TestREDMaxDifferenceBytes(t *testing.T) {
	require.Equal(t, int64(0), REDMaxDifferenceBytes(0))
	require.Equal(t, int64(500), REDMaxDifferenceBytes(100))
}
