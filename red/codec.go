package red

import (
	"errors"
	"fmt"
	"math"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/internal/cipher"
	"github.com/brainmaze/mefd/internal/crc"
	"github.com/brainmaze/mefd/section"
)

// errTruncated signals that a difference stream ran out before
// number_of_samples differences had been read. Decode translates it to
// errs.TruncatedBlock at the package boundary.
var errTruncated = errors.New("red: truncated difference stream")

// knownFlagsMask is every RED block flag bit this codec understands.
// Decode rejects a block whose flags byte sets any other bit as an
// unsupported future revision of the block format.
const knownFlagsMask = format.REDDiscontinuityMask | format.REDLevel1EncryptionMask | format.REDLevel2EncryptionMask

// EncodeOptions controls how one block is compressed.
type EncodeOptions struct {
	// Discontinuity marks the block as starting a new recording
	// discontinuity rather than being contiguous with the previous block.
	Discontinuity bool

	// EncryptionLevel is format.NoEncryption, format.Level1Encryption, or
	// format.Level2Encryption. When non-zero, Key must hold the
	// corresponding expanded AES-128 key.
	EncryptionLevel int8
	Key             []byte
}

// Encode compresses samples into one RED block: header, encoded difference
// payload, and (if requested) per-chunk AES-128 encryption of that payload.
// It returns the fully assembled block (with block_CRC filled in), the
// parsed header describing it, and a TimeSeriesIndex entry with FileOffset
// and StartSample left zero for the caller to fill.
//
// Encode never fails for samples of length >= 1.
func Encode(samples []int32, startTime int64, engine endian.EndianEngine, opts EncodeOptions) ([]byte, section.REDBlockHeader, section.TimeSeriesIndex, error) {
	var header section.REDBlockHeader
	var index section.TimeSeriesIndex

	header.SetDiscontinuity(opts.Discontinuity)
	header.ScaleFactor = 1.0
	header.StartTime = startTime

	if len(samples) == 0 {
		header.NumberOfSamples = 0
		header.DifferenceBytes = 0
		header.BlockBytes = format.REDBlockHeaderBytes
		buf := header.Bytes(engine)
		crcVal := computeBlockCRC(buf)
		header.BlockCRC = crcVal
		engine.PutUint32(buf[format.REDBlockCRCOffset:], crcVal)

		index.StartTime = startTime
		index.NumberOfSamples = 0
		index.BlockBytes = uint32(len(buf))
		index.MaximumSampleValue = format.REDNaN
		index.MinimumSampleValue = format.REDNaN
		index.REDBlockFlags = header.Flags
		fillPadBytes(index.ProtectedRegion[:])
		fillPadBytes(index.REDBlockProtectedRegion[:])
		fillPadBytes(index.REDBlockDiscretionaryRegion[:])
		return buf, header, index, nil
	}

	diffs := make([]int32, len(samples))
	diffs[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		diffs[i] = samples[i] - samples[i-1]
	}

	payload := encodeDifferences(make([]byte, 0, int(format.REDMaxDifferenceBytes(int64(len(samples))))), diffs)
	header.DifferenceBytes = uint32(len(payload))

	boundary := 8
	if opts.EncryptionLevel != format.NoEncryption {
		boundary = cipher.BlockSize
	}
	for len(payload)%boundary != 0 {
		payload = append(payload, format.PadByteValue)
	}

	if opts.EncryptionLevel == format.Level1Encryption {
		if err := cipher.EncryptChunks(opts.Key, payload); err != nil {
			return nil, header, index, err
		}
		header.SetLevel1Encrypted(true)
	} else if opts.EncryptionLevel == format.Level2Encryption {
		if err := cipher.EncryptChunks(opts.Key, payload); err != nil {
			return nil, header, index, err
		}
		header.SetLevel2Encrypted(true)
	}

	header.NumberOfSamples = uint32(len(samples))
	header.Statistics = computeStatistics(diffs)
	header.BlockBytes = uint32(format.REDBlockHeaderBytes + len(payload))

	buf := header.Bytes(engine)
	buf = append(buf, payload...)
	crcVal := computeBlockCRC(buf)
	header.BlockCRC = crcVal
	engine.PutUint32(buf[format.REDBlockCRCOffset:], crcVal)

	minVal, maxVal := findExtrema(samples)

	index.StartTime = startTime
	index.NumberOfSamples = header.NumberOfSamples
	index.BlockBytes = header.BlockBytes
	index.MaximumSampleValue = maxVal
	index.MinimumSampleValue = minVal
	index.REDBlockFlags = header.Flags
	fillPadBytes(index.ProtectedRegion[:])
	fillPadBytes(index.REDBlockProtectedRegion[:])
	fillPadBytes(index.REDBlockDiscretionaryRegion[:])

	return buf, header, index, nil
}

// DecodeOptions controls how one block is decompressed.
type DecodeOptions struct {
	// SkipCRCValidation disables the block_CRC check. Intended only for
	// forensic recovery of a partially corrupt file; leave false in all
	// normal use.
	SkipCRCValidation bool

	// Level1Key/Level2Key are the expanded keys for the corresponding
	// access level, required when the block's flags request that level of
	// encryption.
	Level1Key []byte
	Level2Key []byte
}

// Decode reverses Encode: it validates the block CRC, decrypts the payload
// if the header's flags request it, decodes the difference stream, and
// reconstructs samples by prefix-summing. blockData must start at the
// block's header (byte offset 0 of the block, not the data file).
func Decode(blockData []byte, engine endian.EndianEngine, opts DecodeOptions) ([]int32, section.REDBlockHeader, error) {
	if len(blockData) < format.REDBlockHeaderBytes {
		return nil, section.REDBlockHeader{}, fmt.Errorf("red: block shorter than header: %w", errs.TruncatedBlock)
	}

	header, err := section.ParseREDBlockHeader(blockData, engine)
	if err != nil {
		return nil, header, err
	}

	if header.Flags&^knownFlagsMask != 0 {
		return nil, header, fmt.Errorf("red: block flags 0x%02x set unrecognized bits: %w", header.Flags, errs.UnsupportedVersion)
	}

	if uint32(len(blockData)) < header.BlockBytes {
		return nil, header, fmt.Errorf("red: block declares %d bytes, have %d: %w", header.BlockBytes, len(blockData), errs.TruncatedBlock)
	}

	if !opts.SkipCRCValidation {
		want := computeBlockCRC(blockData[:header.BlockBytes])
		if want != header.BlockCRC {
			return nil, header, fmt.Errorf("red: block CRC mismatch (have 0x%08x, want 0x%08x): %w", header.BlockCRC, want, errs.CorruptBlock)
		}
	}

	if header.NumberOfSamples == 0 {
		return []int32{}, header, nil
	}

	payload := make([]byte, header.BlockBytes-format.REDBlockHeaderBytes)
	copy(payload, blockData[format.REDBlockHeaderBytes:header.BlockBytes])

	switch {
	case header.IsLevel1Encrypted():
		if len(opts.Level1Key) == 0 {
			return nil, header, fmt.Errorf("red: block requires level-1 key: %w", errs.Unauthorized)
		}
		if err := cipher.DecryptChunks(opts.Level1Key, payload); err != nil {
			return nil, header, fmt.Errorf("red: %w", err)
		}
	case header.IsLevel2Encrypted():
		if len(opts.Level2Key) == 0 {
			return nil, header, fmt.Errorf("red: block requires level-2 key: %w", errs.Unauthorized)
		}
		if err := cipher.DecryptChunks(opts.Level2Key, payload); err != nil {
			return nil, header, fmt.Errorf("red: %w", err)
		}
	}

	diffs, err := decodeDifferences(payload, int(header.DifferenceBytes), int(header.NumberOfSamples))
	if err != nil {
		return nil, header, fmt.Errorf("red: %w", errs.TruncatedBlock)
	}

	samples := make([]int32, len(diffs))
	samples[0] = diffs[0]
	for i := 1; i < len(diffs); i++ {
		samples[i] = samples[i-1] + diffs[i]
	}

	if header.ScaleFactor != 1.0 && header.ScaleFactor != 0.0 {
		scale := float64(header.ScaleFactor)
		for i, s := range samples {
			samples[i] = int32(math.Round(float64(s) * scale))
		}
	}

	return samples, header, nil
}

// computeBlockCRC computes block_CRC over buf[4:], the bytes following the
// CRC field itself, as spec.md §4.4 step 7 requires.
func computeBlockCRC(buf []byte) uint32 {
	return crc.Calculate(buf[4:])
}

func fillPadBytes(b []byte) {
	for i := range b {
		b[i] = format.PadByteValue
	}
}
