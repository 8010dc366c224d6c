package section

import (
	"fmt"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

// TimeSeriesMetadataSection2 is the time-series variant of metadata
// Section 2: per-channel acquisition parameters and block statistics summed
// across the segment. All offsets below are absolute within the 16384-byte
// metadata file.
type TimeSeriesMetadataSection2 struct {
	ChannelDescription string
	SessionDescription string
	RecordingDuration   int64

	ReferenceDescription       string
	AcquisitionChannelNumber   int64
	SamplingFrequency          float64
	LowFrequencyFilterSetting  float64
	HighFrequencyFilterSetting float64
	NotchFilterFrequencySetting float64
	ACLineFrequency            float64
	UnitsConversionFactor      float64
	UnitsDescription           string
	StartSample                int64
	NumberOfSamples            int64
	NumberOfBlocks             int64
	MaximumBlockBytes          int64
	MaximumBlockSamples        uint32
	MaximumDifferenceBytes     uint32
	BlockInterval              int64
	NumberOfDiscontinuities    int64
	MaximumContiguousBlocks    int64
	MaximumContiguousBlockBytes int64
	MaximumContiguousSamples   int64

	ProtectedRegion     [format.Section2ProtectedRegionBytes]byte
	DiscretionaryRegion [format.Section2DiscretionaryBytes]byte
}

// NewTimeSeriesMetadataSection2 returns a Section 2 with every numeric field
// set to its NO_ENTRY sentinel.
func NewTimeSeriesMetadataSection2() TimeSeriesMetadataSection2 {
	s := TimeSeriesMetadataSection2{
		RecordingDuration:           format.RecordingDurationNoEntry,
		AcquisitionChannelNumber:    format.AcquisitionChannelNumberNoEntry,
		SamplingFrequency:           -1.0,
		LowFrequencyFilterSetting:   -1.0,
		HighFrequencyFilterSetting:  -1.0,
		NotchFilterFrequencySetting: -1.0,
		ACLineFrequency:             -1.0,
		UnitsConversionFactor:       0.0,
		StartSample:                 format.StartSampleNoEntry,
		NumberOfSamples:             format.NumberOfSamplesNoEntry,
		NumberOfBlocks:              format.NumberOfBlocksNoEntry,
		MaximumBlockBytes:           format.MaximumBlockBytesNoEntry,
		MaximumBlockSamples:         format.MaximumBlockSamplesNoEntry,
		MaximumDifferenceBytes:      format.MaximumDifferenceBytesNoEntry,
		BlockInterval:               format.BlockIntervalNoEntry,
		NumberOfDiscontinuities:     format.NumberOfDiscontinuitiesNoEntry,
		MaximumContiguousBlocks:     format.MaximumContiguousBlocksNoEntry,
		MaximumContiguousBlockBytes: format.MaximumContiguousBlockBytesNoEntry,
		MaximumContiguousSamples:    format.MaximumContiguousSamplesNoEntry,
	}
	fillPad(s.ProtectedRegion[:])
	fillPad(s.DiscretionaryRegion[:])
	return s
}

// ParseTimeSeriesMetadataSection2 parses Section 2 out of data, the full
// metadata file buffer.
func ParseTimeSeriesMetadataSection2(data []byte, engine endian.EndianEngine) (TimeSeriesMetadataSection2, error) {
	var s TimeSeriesMetadataSection2
	if len(data) != format.MetadataFileBytes {
		return s, fmt.Errorf("metadata section 2: expected a %d-byte metadata file, got %d: %w", format.MetadataFileBytes, len(data), errs.InvalidFormat)
	}

	s.ChannelDescription = cstring(data[format.ChannelDescriptionOffset : format.ChannelDescriptionOffset+format.ChannelDescriptionBytes])
	s.SessionDescription = cstring(data[format.SessionDescriptionOffset : format.SessionDescriptionOffset+format.SessionDescriptionBytes])
	s.RecordingDuration = int64(engine.Uint64(data[format.RecordingDurationOffset:]))

	s.ReferenceDescription = cstring(data[format.ReferenceDescriptionOffset : format.ReferenceDescriptionOffset+format.ReferenceDescriptionBytes])
	s.AcquisitionChannelNumber = int64(engine.Uint64(data[format.AcquisitionChannelNumberOffset:]))
	s.SamplingFrequency = float64FromBits(engine.Uint64(data[format.SamplingFrequencyOffset:]))
	s.LowFrequencyFilterSetting = float64FromBits(engine.Uint64(data[format.LowFrequencyFilterOffset:]))
	s.HighFrequencyFilterSetting = float64FromBits(engine.Uint64(data[format.HighFrequencyFilterOffset:]))
	s.NotchFilterFrequencySetting = float64FromBits(engine.Uint64(data[format.NotchFilterFrequencyOffset:]))
	s.ACLineFrequency = float64FromBits(engine.Uint64(data[format.ACLineFrequencyOffset:]))
	s.UnitsConversionFactor = float64FromBits(engine.Uint64(data[format.UnitsConversionFactorOffset:]))
	s.UnitsDescription = cstring(data[format.UnitsDescriptionOffset : format.UnitsDescriptionOffset+format.UnitsDescriptionBytes])
	s.StartSample = int64(engine.Uint64(data[format.StartSampleOffset:]))
	s.NumberOfSamples = int64(engine.Uint64(data[format.NumberOfSamplesOffset:]))
	s.NumberOfBlocks = int64(engine.Uint64(data[format.NumberOfBlocksOffset:]))
	s.MaximumBlockBytes = int64(engine.Uint64(data[format.MaximumBlockBytesOffset:]))
	s.MaximumBlockSamples = engine.Uint32(data[format.MaximumBlockSamplesOffset:])
	s.MaximumDifferenceBytes = engine.Uint32(data[format.MaximumDifferenceBytesOffset:])
	s.BlockInterval = int64(engine.Uint64(data[format.BlockIntervalOffset:]))
	s.NumberOfDiscontinuities = int64(engine.Uint64(data[format.NumberOfDiscontinuitiesOffset:]))
	s.MaximumContiguousBlocks = int64(engine.Uint64(data[format.MaximumContiguousBlocksOffset:]))
	s.MaximumContiguousBlockBytes = int64(engine.Uint64(data[format.MaximumContiguousBlockBytesOffset:]))
	s.MaximumContiguousSamples = int64(engine.Uint64(data[format.MaximumContiguousSamplesOffset:]))

	copy(s.ProtectedRegion[:], data[format.Section2ProtectedRegionOffset:format.Section2ProtectedRegionOffset+format.Section2ProtectedRegionBytes])
	copy(s.DiscretionaryRegion[:], data[format.Section2DiscretionaryOffset:format.Section2DiscretionaryOffset+format.Section2DiscretionaryBytes])

	return s, nil
}

// WriteTo writes Section 2's fields into buf, the full metadata file buffer
// being assembled, at their absolute offsets.
func (s TimeSeriesMetadataSection2) WriteTo(buf []byte, engine endian.EndianEngine) {
	putCString(buf[format.ChannelDescriptionOffset:format.ChannelDescriptionOffset+format.ChannelDescriptionBytes], s.ChannelDescription)
	putCString(buf[format.SessionDescriptionOffset:format.SessionDescriptionOffset+format.SessionDescriptionBytes], s.SessionDescription)
	engine.PutUint64(buf[format.RecordingDurationOffset:], uint64(s.RecordingDuration))

	putCString(buf[format.ReferenceDescriptionOffset:format.ReferenceDescriptionOffset+format.ReferenceDescriptionBytes], s.ReferenceDescription)
	engine.PutUint64(buf[format.AcquisitionChannelNumberOffset:], uint64(s.AcquisitionChannelNumber))
	engine.PutUint64(buf[format.SamplingFrequencyOffset:], float64Bits(s.SamplingFrequency))
	engine.PutUint64(buf[format.LowFrequencyFilterOffset:], float64Bits(s.LowFrequencyFilterSetting))
	engine.PutUint64(buf[format.HighFrequencyFilterOffset:], float64Bits(s.HighFrequencyFilterSetting))
	engine.PutUint64(buf[format.NotchFilterFrequencyOffset:], float64Bits(s.NotchFilterFrequencySetting))
	engine.PutUint64(buf[format.ACLineFrequencyOffset:], float64Bits(s.ACLineFrequency))
	engine.PutUint64(buf[format.UnitsConversionFactorOffset:], float64Bits(s.UnitsConversionFactor))
	putCString(buf[format.UnitsDescriptionOffset:format.UnitsDescriptionOffset+format.UnitsDescriptionBytes], s.UnitsDescription)
	engine.PutUint64(buf[format.StartSampleOffset:], uint64(s.StartSample))
	engine.PutUint64(buf[format.NumberOfSamplesOffset:], uint64(s.NumberOfSamples))
	engine.PutUint64(buf[format.NumberOfBlocksOffset:], uint64(s.NumberOfBlocks))
	engine.PutUint64(buf[format.MaximumBlockBytesOffset:], uint64(s.MaximumBlockBytes))
	engine.PutUint32(buf[format.MaximumBlockSamplesOffset:], s.MaximumBlockSamples)
	engine.PutUint32(buf[format.MaximumDifferenceBytesOffset:], s.MaximumDifferenceBytes)
	engine.PutUint64(buf[format.BlockIntervalOffset:], uint64(s.BlockInterval))
	engine.PutUint64(buf[format.NumberOfDiscontinuitiesOffset:], uint64(s.NumberOfDiscontinuities))
	engine.PutUint64(buf[format.MaximumContiguousBlocksOffset:], uint64(s.MaximumContiguousBlocks))
	engine.PutUint64(buf[format.MaximumContiguousBlockBytesOffset:], uint64(s.MaximumContiguousBlockBytes))
	engine.PutUint64(buf[format.MaximumContiguousSamplesOffset:], uint64(s.MaximumContiguousSamples))

	protected := s.ProtectedRegion
	if isZero(protected[:]) {
		fillPad(protected[:])
	}
	copy(buf[format.Section2ProtectedRegionOffset:], protected[:])

	discretionary := s.DiscretionaryRegion
	if isZero(discretionary[:]) {
		fillPad(discretionary[:])
	}
	copy(buf[format.Section2DiscretionaryOffset:], discretionary[:])
}
