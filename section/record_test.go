package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

func TestRecordHeader_RoundTrip(t *testing.T) {
	h := RecordHeader{
		RecordCRC:    0x12345678,
		Type:         1,
		VersionMajor: format.VersionMajor,
		VersionMinor: format.VersionMinor,
		Encryption:   format.NoEncryption,
		RecordBytes:  64,
		Time:         1000,
	}

	data := h.Bytes(engine)
	require.Len(t, data, format.RecordHeaderBytes)

	parsed, err := ParseRecordHeader(data, engine)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestRecordHeader_RejectsWrongLength(t *testing.T) {
	_, err := ParseRecordHeader(make([]byte, 5), engine)
	require.ErrorIs(t, err, errs.InvalidFormat)
}

func TestRecordIndex_RoundTrip(t *testing.T) {
	idx := RecordIndex{
		Type:         2,
		VersionMajor: format.VersionMajor,
		VersionMinor: format.VersionMinor,
		Encryption:   format.Level1Encryption,
		FileOffset:   2048,
		Time:         5000,
	}

	data := idx.Bytes(engine)
	require.Len(t, data, format.RecordIndexBytes)

	parsed, err := ParseRecordIndex(data, engine)
	require.NoError(t, err)
	require.Equal(t, idx, parsed)
}

func TestRecordIndex_RejectsWrongLength(t *testing.T) {
	_, err := ParseRecordIndex(make([]byte, 5), engine)
	require.ErrorIs(t, err, errs.InvalidFormat)
}
