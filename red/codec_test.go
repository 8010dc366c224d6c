package red

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

var engine = endian.GetLittleEndianEngine()

func TestEncodeDecode_Identity(t *testing.T) {
	samples := []int32{100, 102, 105, 108, 110, 112, 115, 118, 120, 125}

	buf, header, index, err := Encode(samples, 1_000_000, engine, EncodeOptions{})
	require.NoError(t, err)
	require.Equal(t, uint32(len(samples)), header.NumberOfSamples)
	require.Equal(t, header.BlockBytes, index.BlockBytes)
	require.Equal(t, int64(1_000_000), index.StartTime)

	decoded, decHeader, err := Decode(buf, engine, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, samples, decoded)
	require.Equal(t, header.BlockCRC, decHeader.BlockCRC)
}

func TestEncodeDecode_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	samples := make([]int32, 500)
	for i := range samples {
		samples[i] = int32(rng.Intn(2001) - 1000)
	}

	buf, _, _, err := Encode(samples, 0, engine, EncodeOptions{})
	require.NoError(t, err)

	decoded, _, err := Decode(buf, engine, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, samples, decoded)
}

func TestEncodeDecode_AllPrefixWidths(t *testing.T) {
	// Consecutive differences span all five prefix-code widths, including
	// their sign-flipped forms.
	samples := []int32{0, 100, -50, 4000, -4000, 500000, -500000, 1 << 30, -(1 << 30), -(1 << 30) - 10}

	buf, header, _, err := Encode(samples, 5, engine, EncodeOptions{})
	require.NoError(t, err)
	require.True(t, header.BlockBytes%8 == 0)

	decoded, _, err := Decode(buf, engine, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, samples, decoded)
}

func TestEncodeDecode_Discontinuity(t *testing.T) {
	buf, header, index, err := Encode([]int32{1, 2, 3}, 0, engine, EncodeOptions{Discontinuity: true})
	require.NoError(t, err)
	require.True(t, header.IsDiscontinuity())
	require.Equal(t, header.Flags, index.REDBlockFlags)

	_, decHeader, err := Decode(buf, engine, DecodeOptions{})
	require.NoError(t, err)
	require.True(t, decHeader.IsDiscontinuity())
}

func TestEncodeDecode_Encrypted(t *testing.T) {
	key := make([]byte, 16)
	copy(key, []byte("a-test-password"))

	samples := []int32{10, -20, 30, -40, 50, 600000}
	buf, header, _, err := Encode(samples, 0, engine, EncodeOptions{
		EncryptionLevel: format.Level1Encryption,
		Key:             key,
	})
	require.NoError(t, err)
	require.True(t, header.IsLevel1Encrypted())
	require.Zero(t, int(header.BlockBytes-format.REDBlockHeaderBytes)%16)

	// Without the key, the payload cannot be decrypted and samples come
	// back as noise even though the block is well-formed, so Decode must
	// refuse outright instead.
	_, _, err = Decode(buf, engine, DecodeOptions{})
	require.ErrorIs(t, err, errs.Unauthorized)

	decoded, decHeader, err := Decode(buf, engine, DecodeOptions{Level1Key: key})
	require.NoError(t, err)
	require.True(t, decHeader.IsLevel1Encrypted())
	require.Equal(t, samples, decoded)
}

func TestDecode_CorruptCRC(t *testing.T) {
	buf, _, _, err := Encode([]int32{1, 2, 3, 4}, 0, engine, EncodeOptions{})
	require.NoError(t, err)

	buf[10] ^= 0xFF // flip a byte inside the CRC-covered block header

	_, _, err = Decode(buf, engine, DecodeOptions{})
	require.ErrorIs(t, err, errs.CorruptBlock)
}

func TestDecode_TruncatedBlock(t *testing.T) {
	buf, _, _, err := Encode([]int32{1, 2, 3, 4}, 0, engine, EncodeOptions{})
	require.NoError(t, err)

	_, _, err = Decode(buf[:len(buf)-4], engine, DecodeOptions{})
	require.ErrorIs(t, err, errs.TruncatedBlock)

	_, _, err = Decode(buf[:10], engine, DecodeOptions{})
	require.ErrorIs(t, err, errs.TruncatedBlock)
}

func TestDecode_UnsupportedFlags(t *testing.T) {
	buf, _, _, err := Encode([]int32{1, 2, 3}, 0, engine, EncodeOptions{})
	require.NoError(t, err)

	buf[format.REDBlockFlagsOffset] = 0xF8 // unknown high bits set

	_, _, err = Decode(buf, engine, DecodeOptions{SkipCRCValidation: true})
	require.ErrorIs(t, err, errs.UnsupportedVersion)
}

func TestFindExtrema(t *testing.T) {
	min, max := findExtrema([]int32{-100, 50, 200, -300, 150, 0, 75})
	require.Equal(t, int32(-300), min)
	require.Equal(t, int32(200), max)

	min, max = findExtrema([]int32{format.REDNaN, format.REDNaN})
	require.Equal(t, format.REDNaN, min)
	require.Equal(t, format.REDNaN, max)
}

func TestEncode_EmptyBlock(t *testing.T) {
	buf, header, index, err := Encode(nil, 42, engine, EncodeOptions{})
	require.NoError(t, err)
	require.Equal(t, uint32(format.REDBlockHeaderBytes), header.BlockBytes)
	require.Equal(t, uint32(0), header.NumberOfSamples)
	require.Equal(t, format.REDNaN, index.MaximumSampleValue)

	decoded, _, err := Decode(buf, engine, DecodeOptions{})
	require.NoError(t, err)
	require.Empty(t, decoded)
}
