package section

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/internal/crc"
)

// UniversalHeader is the 1024-byte header present at offset 0 of every
// MEF 3.0 file. Byte layout (all integers little-endian):
//
//	[0:4)     header_CRC               uint32  CRC-32 of bytes [4:1024)
//	[4:8)     body_CRC                 uint32  CRC-32 of the file body following this header
//	[8:13)    file_type                5 ASCII bytes, e.g. "tdat\0"
//	[13:14)   version_major            uint8
//	[14:15)   version_minor            uint8
//	[15:16)   byte_order_code          uint8   1 = little-endian, 0 = big-endian
//	[16:24)   start_time               int64   uUTC, or UUTCNoEntry
//	[24:32)   end_time                 int64   uUTC, or UUTCNoEntry
//	[32:40)   number_of_entries        int64
//	[40:48)   maximum_entry_size       int64
//	[48:52)   segment_number           int32   -1 if not a segment-level file
//	[52:308)  channel_name             256-byte NUL-padded UTF-8
//	[308:564) session_name             256-byte NUL-padded UTF-8
//	[564:820) anonymized_name          256-byte NUL-padded UTF-8
//	[820:836) level_UUID               16 raw bytes
//	[836:852) file_UUID                16 raw bytes
//	[852:868) provenance_UUID          16 raw bytes
//	[868:884) level_1_password_validation_field  16 raw bytes
//	[884:900) level_2_password_validation_field  16 raw bytes
//	[900:960) protected_region         60 bytes, round-tripped verbatim
//	[960:1024) discretionary_region    64 bytes, round-tripped verbatim
type UniversalHeader struct {
	HeaderCRC     uint32
	BodyCRC       uint32
	FileType      format.FileType
	VersionMajor  uint8
	VersionMinor  uint8
	ByteOrderCode uint8
	StartTime     int64
	EndTime       int64
	NumberOfEntries   int64
	MaximumEntrySize  int64
	SegmentNumber     int32
	ChannelName       string
	SessionName       string
	AnonymizedName    string
	LevelUUID         [16]byte
	FileUUID          [16]byte
	ProvenanceUUID    [16]byte
	Level1PasswordValidationField [16]byte
	Level2PasswordValidationField [16]byte
	ProtectedRegion     [format.UHProtectedRegionBytes]byte
	DiscretionaryRegion [format.UHDiscretionaryRegionBytes]byte
}

// NewUniversalHeader builds a fresh header for the given file type, filling
// version, byte-order, and padding bytes to their defaults. Callers set
// names, times, and UUIDs afterward.
func NewUniversalHeader(fileType format.FileType) UniversalHeader {
	h := UniversalHeader{
		FileType:         fileType,
		VersionMajor:     format.VersionMajor,
		VersionMinor:     format.VersionMinor,
		ByteOrderCode:    1,
		StartTime:        format.UUTCNoEntry,
		EndTime:          format.UUTCNoEntry,
		NumberOfEntries:  format.UnknownNumberOfEntries,
		MaximumEntrySize: 0,
		SegmentNumber:    format.UHSegmentNumberNoEntry,
	}
	for i := range h.ProtectedRegion {
		h.ProtectedRegion[i] = format.PadByteValue
	}
	for i := range h.DiscretionaryRegion {
		h.DiscretionaryRegion[i] = format.PadByteValue
	}
	return h
}

// ParseUniversalHeader parses a 1024-byte buffer into a UniversalHeader.
func ParseUniversalHeader(data []byte, engine endian.EndianEngine) (UniversalHeader, error) {
	var h UniversalHeader
	if len(data) != format.UniversalHeaderBytes {
		return h, fmt.Errorf("universal header: expected %d bytes, got %d: %w", format.UniversalHeaderBytes, len(data), errs.InvalidFormat)
	}

	h.HeaderCRC = engine.Uint32(data[format.UHHeaderCRCOffset:])
	h.BodyCRC = engine.Uint32(data[format.UHBodyCRCOffset:])
	h.FileType = format.FileType(engine.Uint32(data[format.UHFileTypeOffset:]))
	h.VersionMajor = data[format.UHVersionMajorOffset]
	h.VersionMinor = data[format.UHVersionMinorOffset]
	h.ByteOrderCode = data[format.UHByteOrderCodeOffset]
	h.StartTime = int64(engine.Uint64(data[format.UHStartTimeOffset:]))
	h.EndTime = int64(engine.Uint64(data[format.UHEndTimeOffset:]))
	h.NumberOfEntries = int64(engine.Uint64(data[format.UHNumberOfEntriesOffset:]))
	h.MaximumEntrySize = int64(engine.Uint64(data[format.UHMaximumEntrySizeOffset:]))
	h.SegmentNumber = int32(engine.Uint32(data[format.UHSegmentNumberOffset:]))
	h.ChannelName = cstring(data[format.UHChannelNameOffset : format.UHChannelNameOffset+format.BaseFileNameBytes])
	h.SessionName = cstring(data[format.UHSessionNameOffset : format.UHSessionNameOffset+format.BaseFileNameBytes])
	h.AnonymizedName = cstring(data[format.UHAnonymizedNameOffset : format.UHAnonymizedNameOffset+format.UHAnonymizedNameBytes])
	copy(h.LevelUUID[:], data[format.UHLevelUUIDOffset:format.UHLevelUUIDOffset+format.UUIDBytes])
	copy(h.FileUUID[:], data[format.UHFileUUIDOffset:format.UHFileUUIDOffset+format.UUIDBytes])
	copy(h.ProvenanceUUID[:], data[format.UHProvenanceUUIDOffset:format.UHProvenanceUUIDOffset+format.UUIDBytes])
	copy(h.Level1PasswordValidationField[:], data[format.UHLevel1PasswordValidationOffset:format.UHLevel1PasswordValidationOffset+16])
	copy(h.Level2PasswordValidationField[:], data[format.UHLevel2PasswordValidationOffset:format.UHLevel2PasswordValidationOffset+16])
	copy(h.ProtectedRegion[:], data[format.UHProtectedRegionOffset:format.UHProtectedRegionOffset+format.UHProtectedRegionBytes])
	copy(h.DiscretionaryRegion[:], data[format.UHDiscretionaryRegionOffset:format.UHDiscretionaryRegionOffset+format.UHDiscretionaryRegionBytes])

	if h.VersionMajor != format.VersionMajor {
		return h, fmt.Errorf("universal header: unsupported MEF version %d.%d: %w", h.VersionMajor, h.VersionMinor, errs.InvalidFormat)
	}

	if crc.Calculate(data[format.UHBodyCRCOffset:]) != h.HeaderCRC {
		return h, fmt.Errorf("universal header: header CRC mismatch: %w", errs.InvalidFormat)
	}

	return h, nil
}

// Bytes serializes the header to a 1024-byte buffer and fills in HeaderCRC
// (computed over bytes [4:1024)) as a side effect of the returned copy; h
// itself is not mutated.
func (h UniversalHeader) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, format.UniversalHeaderBytes)

	engine.PutUint32(buf[format.UHBodyCRCOffset:], h.BodyCRC)
	engine.PutUint32(buf[format.UHFileTypeOffset:], uint32(h.FileType))
	buf[format.UHVersionMajorOffset] = h.VersionMajor
	buf[format.UHVersionMinorOffset] = h.VersionMinor
	buf[format.UHByteOrderCodeOffset] = h.ByteOrderCode
	engine.PutUint64(buf[format.UHStartTimeOffset:], uint64(h.StartTime))
	engine.PutUint64(buf[format.UHEndTimeOffset:], uint64(h.EndTime))
	engine.PutUint64(buf[format.UHNumberOfEntriesOffset:], uint64(h.NumberOfEntries))
	engine.PutUint64(buf[format.UHMaximumEntrySizeOffset:], uint64(h.MaximumEntrySize))
	engine.PutUint32(buf[format.UHSegmentNumberOffset:], uint32(h.SegmentNumber))
	putCString(buf[format.UHChannelNameOffset:format.UHChannelNameOffset+format.BaseFileNameBytes], h.ChannelName)
	putCString(buf[format.UHSessionNameOffset:format.UHSessionNameOffset+format.BaseFileNameBytes], h.SessionName)
	putCString(buf[format.UHAnonymizedNameOffset:format.UHAnonymizedNameOffset+format.UHAnonymizedNameBytes], h.AnonymizedName)
	copy(buf[format.UHLevelUUIDOffset:], h.LevelUUID[:])
	copy(buf[format.UHFileUUIDOffset:], h.FileUUID[:])
	copy(buf[format.UHProvenanceUUIDOffset:], h.ProvenanceUUID[:])
	copy(buf[format.UHLevel1PasswordValidationOffset:], h.Level1PasswordValidationField[:])
	copy(buf[format.UHLevel2PasswordValidationOffset:], h.Level2PasswordValidationField[:])

	protected := h.ProtectedRegion
	if isZero(protected[:]) {
		fillPad(protected[:])
	}
	copy(buf[format.UHProtectedRegionOffset:], protected[:])

	discretionary := h.DiscretionaryRegion
	if isZero(discretionary[:]) {
		fillPad(discretionary[:])
	}
	copy(buf[format.UHDiscretionaryRegionOffset:], discretionary[:])

	headerCRC := crc.Calculate(buf[format.UHBodyCRCOffset:])
	engine.PutUint32(buf[format.UHHeaderCRCOffset:], headerCRC)

	return buf
}

// NewUUID generates a random (v4) UUID for a level, file, or provenance
// identifier.
func NewUUID() [16]byte {
	var out [16]byte
	id := uuid.New()
	copy(out[:], id[:])
	return out
}

func cstring(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func putCString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	n := copy(dst, s)
	_ = n
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func fillPad(b []byte) {
	for i := range b {
		b[i] = format.PadByteValue
	}
}
