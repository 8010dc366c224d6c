package section

import (
	"fmt"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

// MetadataSection3 carries session-wide recording context: time-zone
// handling, subject identity, and recording location. All offsets below are
// absolute within the 16384-byte metadata file.
//
// DSTStartTime/DSTEndTime are carried over from the reference implementation
// (daylight-saving bracketing for RecordingTimeOffset) even though the
// distilled spec's prose does not name them individually.
type MetadataSection3 struct {
	RecordingTimeOffset int64
	DSTStartTime        int64
	DSTEndTime          int64
	GMTOffset           int32
	SubjectName1        string
	SubjectName2        string
	SubjectID           string
	RecordingLocation   string

	ProtectedRegion     [format.Section3ProtectedRegionBytes]byte
	DiscretionaryRegion [format.Section3DiscretionaryBytes]byte
}

// NewMetadataSection3 returns a Section 3 with every time field set to its
// NO_ENTRY sentinel.
func NewMetadataSection3() MetadataSection3 {
	s := MetadataSection3{
		RecordingTimeOffset: format.UUTCNoEntry,
		DSTStartTime:        format.UUTCNoEntry,
		DSTEndTime:          format.UUTCNoEntry,
		GMTOffset:           format.GMTOffsetNoEntry,
	}
	fillPad(s.ProtectedRegion[:])
	fillPad(s.DiscretionaryRegion[:])
	return s
}

// ParseMetadataSection3 parses Section 3 out of data, the full metadata
// file buffer.
func ParseMetadataSection3(data []byte, engine endian.EndianEngine) (MetadataSection3, error) {
	var s MetadataSection3
	if len(data) != format.MetadataFileBytes {
		return s, fmt.Errorf("metadata section 3: expected a %d-byte metadata file, got %d: %w", format.MetadataFileBytes, len(data), errs.InvalidFormat)
	}

	s.RecordingTimeOffset = int64(engine.Uint64(data[format.RecordingTimeOffsetOffset:]))
	s.DSTStartTime = int64(engine.Uint64(data[format.DSTStartTimeOffset:]))
	s.DSTEndTime = int64(engine.Uint64(data[format.DSTEndTimeOffset:]))
	s.GMTOffset = int32(engine.Uint32(data[format.GMTOffsetOffset:]))
	s.SubjectName1 = cstring(data[format.SubjectName1Offset : format.SubjectName1Offset+format.SubjectNameBytes])
	s.SubjectName2 = cstring(data[format.SubjectName2Offset : format.SubjectName2Offset+format.SubjectNameBytes])
	s.SubjectID = cstring(data[format.SubjectIDOffset : format.SubjectIDOffset+format.SubjectIDBytes])
	s.RecordingLocation = cstring(data[format.RecordingLocationOffset : format.RecordingLocationOffset+format.RecordingLocationBytes])

	copy(s.ProtectedRegion[:], data[format.Section3ProtectedRegionOffset:format.Section3ProtectedRegionOffset+format.Section3ProtectedRegionBytes])
	copy(s.DiscretionaryRegion[:], data[format.Section3DiscretionaryOffset:format.Section3DiscretionaryOffset+format.Section3DiscretionaryBytes])

	return s, nil
}

// WriteTo writes Section 3's fields into buf, the full metadata file buffer
// being assembled, at their absolute offsets.
func (s MetadataSection3) WriteTo(buf []byte, engine endian.EndianEngine) {
	engine.PutUint64(buf[format.RecordingTimeOffsetOffset:], uint64(s.RecordingTimeOffset))
	engine.PutUint64(buf[format.DSTStartTimeOffset:], uint64(s.DSTStartTime))
	engine.PutUint64(buf[format.DSTEndTimeOffset:], uint64(s.DSTEndTime))
	engine.PutUint32(buf[format.GMTOffsetOffset:], uint32(s.GMTOffset))
	putCString(buf[format.SubjectName1Offset:format.SubjectName1Offset+format.SubjectNameBytes], s.SubjectName1)
	putCString(buf[format.SubjectName2Offset:format.SubjectName2Offset+format.SubjectNameBytes], s.SubjectName2)
	putCString(buf[format.SubjectIDOffset:format.SubjectIDOffset+format.SubjectIDBytes], s.SubjectID)
	putCString(buf[format.RecordingLocationOffset:format.RecordingLocationOffset+format.RecordingLocationBytes], s.RecordingLocation)

	protected := s.ProtectedRegion
	if isZero(protected[:]) {
		fillPad(protected[:])
	}
	copy(buf[format.Section3ProtectedRegionOffset:], protected[:])

	discretionary := s.DiscretionaryRegion
	if isZero(discretionary[:]) {
		fillPad(discretionary[:])
	}
	copy(buf[format.Section3DiscretionaryOffset:], discretionary[:])
}
