package section

import (
	"fmt"

	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

// MetadataSection1 carries the per-section encryption levels that apply to
// Section 2 and Section 3 of a metadata file. It occupies the 1536 bytes
// immediately following the Universal Header.
type MetadataSection1 struct {
	Section2Encryption int8
	Section3Encryption int8
	ProtectedRegion     [format.Section1ProtectedRegionBytes]byte
	DiscretionaryRegion [format.Section1DiscretionaryBytes]byte
}

// NewMetadataSection1 returns a Section 1 with the reference defaults
// (Section 2 encrypted at level 1, Section 3 at level 2) and padded regions.
func NewMetadataSection1() MetadataSection1 {
	s := MetadataSection1{
		Section2Encryption: format.Level1Encryption,
		Section3Encryption: format.Level2Encryption,
	}
	fillPad(s.ProtectedRegion[:])
	fillPad(s.DiscretionaryRegion[:])
	return s
}

// ParseMetadataSection1 parses Section 1 out of data, the full
// MetadataFileBytes-length metadata file buffer. The offsets involved are
// absolute offsets within that buffer.
func ParseMetadataSection1(data []byte) (MetadataSection1, error) {
	var s MetadataSection1
	if len(data) != format.MetadataFileBytes {
		return s, fmt.Errorf("metadata section 1: expected a %d-byte metadata file, got %d: %w", format.MetadataFileBytes, len(data), errs.InvalidFormat)
	}
	s.Section2Encryption = int8(data[format.Section2EncryptionOffset])
	s.Section3Encryption = int8(data[format.Section3EncryptionOffset])
	copy(s.ProtectedRegion[:], data[format.Section1ProtectedRegionOffset:format.Section1ProtectedRegionOffset+format.Section1ProtectedRegionBytes])
	copy(s.DiscretionaryRegion[:], data[format.Section1DiscretionaryOffset:format.Section1DiscretionaryOffset+format.Section1DiscretionaryBytes])
	return s, nil
}

// WriteTo writes Section 1's fields into buf, the full MetadataFileBytes
// metadata file buffer being assembled, at their absolute offsets.
func (s MetadataSection1) WriteTo(buf []byte) {
	buf[format.Section2EncryptionOffset] = uint8(s.Section2Encryption)
	buf[format.Section3EncryptionOffset] = uint8(s.Section3Encryption)

	protected := s.ProtectedRegion
	if isZero(protected[:]) {
		fillPad(protected[:])
	}
	copy(buf[format.Section1ProtectedRegionOffset:], protected[:])

	discretionary := s.DiscretionaryRegion
	if isZero(discretionary[:]) {
		fillPad(discretionary[:])
	}
	copy(buf[format.Section1DiscretionaryOffset:], discretionary[:])
}
