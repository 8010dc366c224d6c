package section

import (
	"fmt"
	"math"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

// REDBlockHeader is the 304-byte header prefixed to every RED-compressed
// block in a .tdat file.
type REDBlockHeader struct {
	BlockCRC          uint32
	Flags             byte
	DetrendSlope      float32
	DetrendIntercept  float32
	ScaleFactor       float32
	DifferenceBytes   uint32
	NumberOfSamples   uint32
	BlockBytes        uint32
	StartTime         int64
	Statistics        [format.REDBlockStatisticsBytes]byte
}

// IsDiscontinuity reports whether this block starts a new recording
// discontinuity (i.e. is not contiguous with the previous block).
func (h REDBlockHeader) IsDiscontinuity() bool {
	return h.Flags&format.REDDiscontinuityMask != 0
}

// IsLevel1Encrypted reports whether the difference payload is encrypted
// under the level-1 key.
func (h REDBlockHeader) IsLevel1Encrypted() bool {
	return h.Flags&format.REDLevel1EncryptionMask != 0
}

// IsLevel2Encrypted reports whether the difference payload is encrypted
// under the level-2 key.
func (h REDBlockHeader) IsLevel2Encrypted() bool {
	return h.Flags&format.REDLevel2EncryptionMask != 0
}

// SetDiscontinuity sets or clears the discontinuity flag bit.
func (h *REDBlockHeader) SetDiscontinuity(v bool) { h.setFlag(format.REDDiscontinuityMask, v) }

// SetLevel1Encrypted sets or clears the level-1 encryption flag bit.
func (h *REDBlockHeader) SetLevel1Encrypted(v bool) { h.setFlag(format.REDLevel1EncryptionMask, v) }

// SetLevel2Encrypted sets or clears the level-2 encryption flag bit.
func (h *REDBlockHeader) SetLevel2Encrypted(v bool) { h.setFlag(format.REDLevel2EncryptionMask, v) }

func (h *REDBlockHeader) setFlag(mask byte, v bool) {
	if v {
		h.Flags |= mask
	} else {
		h.Flags &^= mask
	}
}

// ParseREDBlockHeader parses the 304-byte header at the start of data.
// data may be longer than the header (the compressed payload follows).
func ParseREDBlockHeader(data []byte, engine endian.EndianEngine) (REDBlockHeader, error) {
	var h REDBlockHeader
	if len(data) < format.REDBlockHeaderBytes {
		return h, fmt.Errorf("red block header: need at least %d bytes, got %d: %w", format.REDBlockHeaderBytes, len(data), errs.InvalidFormat)
	}

	h.BlockCRC = engine.Uint32(data[format.REDBlockCRCOffset:])
	h.Flags = data[format.REDBlockFlagsOffset]
	h.DetrendSlope = math.Float32frombits(engine.Uint32(data[format.REDBlockDetrendSlopeOffset:]))
	h.DetrendIntercept = math.Float32frombits(engine.Uint32(data[format.REDBlockDetrendInterceptOffset:]))
	h.ScaleFactor = math.Float32frombits(engine.Uint32(data[format.REDBlockScaleFactorOffset:]))
	h.DifferenceBytes = engine.Uint32(data[format.REDBlockDifferenceBytesOffset:])
	h.NumberOfSamples = engine.Uint32(data[format.REDBlockNumberOfSamplesOffset:])
	h.BlockBytes = engine.Uint32(data[format.REDBlockBlockBytesOffset:])
	h.StartTime = int64(engine.Uint64(data[format.REDBlockStartTimeOffset:]))
	copy(h.Statistics[:], data[format.REDBlockStatisticsOffset:format.REDBlockStatisticsOffset+format.REDBlockStatisticsBytes])

	return h, nil
}

// Bytes serializes the header to a 304-byte buffer. BlockCRC is written
// verbatim — callers compute it over [4:block_bytes) after the full block is
// assembled and overwrite bytes [0:4) with it.
func (h REDBlockHeader) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, format.REDBlockHeaderBytes)

	engine.PutUint32(buf[format.REDBlockCRCOffset:], h.BlockCRC)
	buf[format.REDBlockFlagsOffset] = h.Flags
	engine.PutUint32(buf[format.REDBlockDetrendSlopeOffset:], math.Float32bits(h.DetrendSlope))
	engine.PutUint32(buf[format.REDBlockDetrendInterceptOffset:], math.Float32bits(h.DetrendIntercept))
	engine.PutUint32(buf[format.REDBlockScaleFactorOffset:], math.Float32bits(h.ScaleFactor))
	engine.PutUint32(buf[format.REDBlockDifferenceBytesOffset:], h.DifferenceBytes)
	engine.PutUint32(buf[format.REDBlockNumberOfSamplesOffset:], h.NumberOfSamples)
	engine.PutUint32(buf[format.REDBlockBlockBytesOffset:], h.BlockBytes)
	engine.PutUint64(buf[format.REDBlockStartTimeOffset:], uint64(h.StartTime))
	copy(buf[format.REDBlockStatisticsOffset:], h.Statistics[:])

	return buf
}
