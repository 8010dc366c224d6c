package section

import (
	"fmt"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

// RecordHeader is the 24-byte header prefixed to each entry in a .rdat
// record-data file. The record-file subsystem is recognized by this module
// (so that .rdat/.ridx type codes are not mistaken for corruption when
// encountered) but no operation here produces or consumes record bodies.
type RecordHeader struct {
	RecordCRC     uint32
	Type          uint32
	VersionMajor  uint8
	VersionMinor  uint8
	Encryption    int8
	RecordBytes   uint32
	Time          int64
}

// ParseRecordHeader parses a 24-byte record header.
func ParseRecordHeader(data []byte, engine endian.EndianEngine) (RecordHeader, error) {
	var h RecordHeader
	if len(data) != format.RecordHeaderBytes {
		return h, fmt.Errorf("record header: expected %d bytes, got %d: %w", format.RecordHeaderBytes, len(data), errs.InvalidFormat)
	}
	h.RecordCRC = engine.Uint32(data[format.RecordHeaderCRCOffset:])
	h.Type = engine.Uint32(data[format.RecordHeaderTypeOffset:])
	h.VersionMajor = data[format.RecordHeaderVersionMajor]
	h.VersionMinor = data[format.RecordHeaderVersionMinor]
	h.Encryption = int8(data[format.RecordHeaderEncryptionOffset])
	h.RecordBytes = engine.Uint32(data[format.RecordHeaderBytesOffset:])
	h.Time = int64(engine.Uint64(data[format.RecordHeaderTimeOffset:]))
	return h, nil
}

// Bytes serializes the record header to a 24-byte buffer.
func (h RecordHeader) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, format.RecordHeaderBytes)
	engine.PutUint32(buf[format.RecordHeaderCRCOffset:], h.RecordCRC)
	engine.PutUint32(buf[format.RecordHeaderTypeOffset:], h.Type)
	buf[format.RecordHeaderVersionMajor] = h.VersionMajor
	buf[format.RecordHeaderVersionMinor] = h.VersionMinor
	buf[format.RecordHeaderEncryptionOffset] = uint8(h.Encryption)
	engine.PutUint32(buf[format.RecordHeaderBytesOffset:], h.RecordBytes)
	engine.PutUint64(buf[format.RecordHeaderTimeOffset:], uint64(h.Time))
	return buf
}

// RecordIndex is the 24-byte entry in a .ridx file locating one record.
type RecordIndex struct {
	Type         uint32
	VersionMajor uint8
	VersionMinor uint8
	Encryption   int8
	FileOffset   int64
	Time         int64
}

// ParseRecordIndex parses a 24-byte record index entry.
func ParseRecordIndex(data []byte, engine endian.EndianEngine) (RecordIndex, error) {
	var idx RecordIndex
	if len(data) != format.RecordIndexBytes {
		return idx, fmt.Errorf("record index: expected %d bytes, got %d: %w", format.RecordIndexBytes, len(data), errs.InvalidFormat)
	}
	idx.Type = engine.Uint32(data[format.RecordIndexTypeOffset:])
	idx.VersionMajor = data[format.RecordIndexVersionMajor]
	idx.VersionMinor = data[format.RecordIndexVersionMinor]
	idx.Encryption = int8(data[format.RecordIndexEncryptionOffset])
	idx.FileOffset = int64(engine.Uint64(data[format.RecordIndexFileOffsetOffset:]))
	idx.Time = int64(engine.Uint64(data[format.RecordIndexTimeOffset:]))
	return idx, nil
}

// Bytes serializes the record index entry to a 24-byte buffer.
func (idx RecordIndex) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, format.RecordIndexBytes)
	engine.PutUint32(buf[format.RecordIndexTypeOffset:], idx.Type)
	buf[format.RecordIndexVersionMajor] = idx.VersionMajor
	buf[format.RecordIndexVersionMinor] = idx.VersionMinor
	buf[format.RecordIndexEncryptionOffset] = uint8(idx.Encryption)
	engine.PutUint64(buf[format.RecordIndexFileOffsetOffset:], uint64(idx.FileOffset))
	engine.PutUint64(buf[format.RecordIndexTimeOffset:], uint64(idx.Time))
	return buf
}
