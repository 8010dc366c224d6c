package section

import (
	"fmt"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

// TimeSeriesIndex is one 56-byte entry in a .tidx file, describing the
// location, timing, and extrema of one RED block within the corresponding
// .tdat file.
//
// The tail of the entry is not an undifferentiated pad: bytes [40:44) are a
// protected region, byte 44 mirrors the RED block's flags byte, bytes
// [45:48) are the RED block's own 3-byte protected region, and bytes
// [48:56) are its 8-byte discretionary region — the index entry embeds a
// miniature copy of the block header's trailing layout so a reader can
// inspect block flags without opening the data file.
type TimeSeriesIndex struct {
	FileOffset          int64
	StartTime           int64
	StartSample         int64
	NumberOfSamples     uint32
	BlockBytes          uint32
	MaximumSampleValue  int32
	MinimumSampleValue  int32

	ProtectedRegion             [format.TSIProtectedRegionBytes]byte
	REDBlockFlags               byte
	REDBlockProtectedRegion     [format.TSIRedBlockProtectedRegionBytes]byte
	REDBlockDiscretionaryRegion [format.TSIRedBlockDiscretionaryRegionBytes]byte
}

// ParseTimeSeriesIndex parses one 56-byte index entry.
func ParseTimeSeriesIndex(data []byte, engine endian.EndianEngine) (TimeSeriesIndex, error) {
	var idx TimeSeriesIndex
	if len(data) != format.TimeSeriesIndexBytes {
		return idx, fmt.Errorf("time series index: expected %d bytes, got %d: %w", format.TimeSeriesIndexBytes, len(data), errs.InvalidFormat)
	}

	idx.FileOffset = int64(engine.Uint64(data[format.TSIFileOffsetOffset:]))
	idx.StartTime = int64(engine.Uint64(data[format.TSIStartTimeOffset:]))
	idx.StartSample = int64(engine.Uint64(data[format.TSIStartSampleOffset:]))
	idx.NumberOfSamples = engine.Uint32(data[format.TSINumberOfSamplesOffset:])
	idx.BlockBytes = engine.Uint32(data[format.TSIBlockBytesOffset:])
	idx.MaximumSampleValue = int32(engine.Uint32(data[format.TSIMaximumSampleValueOffset:]))
	idx.MinimumSampleValue = int32(engine.Uint32(data[format.TSIMinimumSampleValueOffset:]))

	copy(idx.ProtectedRegion[:], data[format.TSIProtectedRegionOffset:format.TSIProtectedRegionOffset+format.TSIProtectedRegionBytes])
	idx.REDBlockFlags = data[format.TSIRedBlockFlagsOffset]
	copy(idx.REDBlockProtectedRegion[:], data[format.TSIRedBlockProtectedRegionOffset:format.TSIRedBlockProtectedRegionOffset+format.TSIRedBlockProtectedRegionBytes])
	copy(idx.REDBlockDiscretionaryRegion[:], data[format.TSIRedBlockDiscretionaryRegionOffset:format.TSIRedBlockDiscretionaryRegionOffset+format.TSIRedBlockDiscretionaryRegionBytes])

	return idx, nil
}

// Bytes serializes the index entry to a 56-byte buffer.
func (idx TimeSeriesIndex) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, format.TimeSeriesIndexBytes)

	engine.PutUint64(buf[format.TSIFileOffsetOffset:], uint64(idx.FileOffset))
	engine.PutUint64(buf[format.TSIStartTimeOffset:], uint64(idx.StartTime))
	engine.PutUint64(buf[format.TSIStartSampleOffset:], uint64(idx.StartSample))
	engine.PutUint32(buf[format.TSINumberOfSamplesOffset:], idx.NumberOfSamples)
	engine.PutUint32(buf[format.TSIBlockBytesOffset:], idx.BlockBytes)
	engine.PutUint32(buf[format.TSIMaximumSampleValueOffset:], uint32(idx.MaximumSampleValue))
	engine.PutUint32(buf[format.TSIMinimumSampleValueOffset:], uint32(idx.MinimumSampleValue))

	copy(buf[format.TSIProtectedRegionOffset:], idx.ProtectedRegion[:])
	buf[format.TSIRedBlockFlagsOffset] = idx.REDBlockFlags
	copy(buf[format.TSIRedBlockProtectedRegionOffset:], idx.REDBlockProtectedRegion[:])
	copy(buf[format.TSIRedBlockDiscretionaryRegionOffset:], idx.REDBlockDiscretionaryRegion[:])

	return buf
}
