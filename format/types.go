// Package format holds the MEF 3.0 file-type codes, size constants, and
// reserved sentinel values shared by the section, red, reader, and writer
// packages.
package format

// FileType identifies the kind of file a Universal Header describes, encoded
// as the little-endian uint32 of its four-character ASCII tag.
type FileType uint32

const (
	SessionDirectoryType FileType = 0x6466656d // "mefd"
	SegmentDirectoryType FileType = 0x64676573 // "segd"

	RecordDataFileType    FileType = 0x74616472 // "rdat"
	RecordIndicesFileType FileType = 0x78646972 // "ridx"

	TimeSeriesChannelDirectoryType FileType = 0x646d6974 // "timd"
	TimeSeriesMetadataFileType     FileType = 0x74656d74 // "tmet"
	TimeSeriesDataFileType         FileType = 0x74616474 // "tdat"
	TimeSeriesIndicesFileType      FileType = 0x78646974 // "tidx"

	// Video channel types are recognized on read and otherwise ignored; no
	// operation in this module produces them.
	VideoChannelDirectoryType FileType = 0x64646976 // "vidd"
	VideoMetadataFileType     FileType = 0x74656d76 // "vmet"
	VideoIndicesFileType      FileType = 0x78646976 // "vidx"

	NoTypeCode FileType = 0
)

func (t FileType) String() string {
	switch t {
	case SessionDirectoryType:
		return "mefd"
	case SegmentDirectoryType:
		return "segd"
	case RecordDataFileType:
		return "rdat"
	case RecordIndicesFileType:
		return "ridx"
	case TimeSeriesChannelDirectoryType:
		return "timd"
	case TimeSeriesMetadataFileType:
		return "tmet"
	case TimeSeriesDataFileType:
		return "tdat"
	case TimeSeriesIndicesFileType:
		return "tidx"
	case VideoChannelDirectoryType:
		return "vidd"
	case VideoMetadataFileType:
		return "vmet"
	case VideoIndicesFileType:
		return "vidx"
	default:
		return "unknown"
	}
}

// ChannelType distinguishes time series from video channels at the API
// level, independent of the file-type tag used on disk.
type ChannelType int8

const (
	UnknownChannelType    ChannelType = -1
	TimeSeriesChannelType ChannelType = 1
	VideoChannelType      ChannelType = 2
)

// Encryption levels, as carried in a Universal Header and RED block flags.
const (
	NoEncryption     int8 = 0
	Level1Encryption int8 = 1
	Level2Encryption int8 = 2

	EncryptionLevelNoEntry int8 = -128
)

// MEF version this module reads and writes.
const (
	VersionMajor uint8 = 3
	VersionMinor uint8 = 0
)

// Miscellaneous byte-layout constants.
const (
	TypeBytes         = 5
	UUIDBytes         = 16
	TimeStringBytes   = 32
	BaseFileNameBytes = 256
	PadByteValue byte = 0x7e
	FileNumberingDigits = 6
	MaximumGMTOffset    = 86400
	MinimumGMTOffset    = -86400
	GMTOffsetNoEntry    = -86401

	UnknownNumberOfEntries int64  = -1
	UUTCNoEntry            int64  = -9223372036854775808 // 0x8000000000000000 as si8
	CRCNoEntry             uint32 = 0
)

// Universal Header layout (1024 bytes total).
const (
	UniversalHeaderBytes = 1024

	UHHeaderCRCOffset                = 0
	UHBodyCRCOffset                  = 4
	UHFileTypeOffset                 = 8
	UHVersionMajorOffset             = 13
	UHVersionMinorOffset             = 14
	UHByteOrderCodeOffset            = 15
	UHStartTimeOffset                = 16
	UHEndTimeOffset                  = 24
	UHNumberOfEntriesOffset          = 32
	UHMaximumEntrySizeOffset         = 40
	UHSegmentNumberOffset            = 48
	UHChannelNameOffset              = 52
	UHSessionNameOffset              = 308
	UHAnonymizedNameOffset           = 564
	UHAnonymizedNameBytes            = 256
	UHLevelUUIDOffset                = 820
	UHFileUUIDOffset                 = 836
	UHProvenanceUUIDOffset           = 852
	UHLevel1PasswordValidationOffset = 868
	UHLevel2PasswordValidationOffset = 884
	UHProtectedRegionOffset          = 900
	UHProtectedRegionBytes           = 60
	UHDiscretionaryRegionOffset      = 960
	UHDiscretionaryRegionBytes       = 64

	UHSegmentNumberNoEntry = -1
	UHChannelLevelCode     = -2
	UHSessionLevelCode     = -3
)

// Metadata file layout (16384 bytes total, three sections).
const (
	MetadataFileBytes = 16384

	MetadataSection1Offset        = UniversalHeaderBytes
	MetadataSection1Bytes         = 1536
	Section2EncryptionOffset      = 1024 // absolute offset within the metadata file
	Section3EncryptionOffset      = 1025
	Section1ProtectedRegionOffset = 1026
	Section1ProtectedRegionBytes  = 766
	Section1DiscretionaryOffset   = 1792
	Section1DiscretionaryBytes    = 768

	MetadataSection2Offset = 2560
	MetadataSection2Bytes  = 10752

	ChannelDescriptionOffset = 2560
	ChannelDescriptionBytes  = 2048
	SessionDescriptionOffset = 4608
	SessionDescriptionBytes  = 2048
	RecordingDurationOffset  = 6656

	RecordingDurationNoEntry int64 = -1

	// Time-series specific fields within Section 2.
	ReferenceDescriptionOffset            = 6664
	ReferenceDescriptionBytes             = ChannelDescriptionBytes
	AcquisitionChannelNumberOffset        = 8712
	AcquisitionChannelNumberNoEntry int64 = -1
	SamplingFrequencyOffset               = 8720
	LowFrequencyFilterOffset              = 8728
	HighFrequencyFilterOffset             = 8736
	NotchFilterFrequencyOffset            = 8744
	ACLineFrequencyOffset                 = 8752
	UnitsConversionFactorOffset           = 8760
	UnitsDescriptionOffset                = 8768
	UnitsDescriptionBytes                 = 128
	StartSampleOffset                     = 8912
	StartSampleNoEntry              int64 = -1
	NumberOfSamplesOffset                 = 8920
	NumberOfSamplesNoEntry          int64 = -1
	NumberOfBlocksOffset                  = 8928
	NumberOfBlocksNoEntry           int64 = -1
	MaximumBlockBytesOffset                     = 8936
	MaximumBlockBytesNoEntry        int64        = -1
	MaximumBlockSamplesOffset                    = 8944
	MaximumBlockSamplesNoEntry      uint32        = 0xFFFFFFFF
	MaximumDifferenceBytesOffset                 = 8948
	MaximumDifferenceBytesNoEntry   uint32        = 0xFFFFFFFF
	BlockIntervalOffset                          = 8952
	BlockIntervalNoEntry            int64        = -1
	NumberOfDiscontinuitiesOffset                = 8960
	NumberOfDiscontinuitiesNoEntry  int64        = -1
	MaximumContiguousBlocksOffset                = 8968
	MaximumContiguousBlocksNoEntry  int64        = -1
	MaximumContiguousBlockBytesOffset     = 8976
	MaximumContiguousBlockBytesNoEntry int64 = -1
	MaximumContiguousSamplesOffset        = 8984
	MaximumContiguousSamplesNoEntry int64 = -1
	Section2ProtectedRegionOffset         = 8992
	Section2ProtectedRegionBytes          = 2160
	Section2DiscretionaryOffset           = 11152
	Section2DiscretionaryBytes            = 2160

	MetadataSection3Offset = 13312
	MetadataSection3Bytes  = 3072

	RecordingTimeOffsetOffset     = 13312
	DSTStartTimeOffset            = 13320
	DSTEndTimeOffset              = 13328
	GMTOffsetOffset               = 13336
	SubjectName1Offset            = 13340
	SubjectNameBytes              = 128
	SubjectName2Offset            = 13468
	SubjectIDOffset               = 13596
	SubjectIDBytes                = 128
	RecordingLocationOffset       = 13724
	RecordingLocationBytes        = 512
	Section3ProtectedRegionOffset = 14236
	Section3ProtectedRegionBytes  = 1124
	Section3DiscretionaryOffset   = 15360
	Section3DiscretionaryBytes    = 1024
)

// Time-series index entry layout (56 bytes total).
const (
	TimeSeriesIndexBytes = 56

	TSIFileOffsetOffset                 = 0
	TSIStartTimeOffset                  = 8
	TSIStartSampleOffset                = 16
	TSINumberOfSamplesOffset            = 24
	TSIBlockBytesOffset                 = 28
	TSIMaximumSampleValueOffset         = 32
	TSIMinimumSampleValueOffset         = 36
	TSIProtectedRegionOffset            = 40
	TSIProtectedRegionBytes             = 4
	TSIRedBlockFlagsOffset              = 44
	TSIRedBlockProtectedRegionOffset    = 45
	TSIRedBlockProtectedRegionBytes     = 3
	TSIRedBlockDiscretionaryRegionOffset = 48
	TSIRedBlockDiscretionaryRegionBytes  = 8

	TSIFileOffsetNoEntry      int64  = -1
	TSIStartSampleNoEntry     int64  = -1
	TSINumberOfSamplesNoEntry uint32 = 0xFFFFFFFF
	TSIBlockBytesNoEntry      uint32 = 0xFFFFFFFF
)

// Record header/index layout (24 bytes each) — recognized, not exercised by
// the core reader/writer.
const (
	RecordHeaderBytes = 24
	RecordIndexBytes  = 24

	RecordHeaderCRCOffset        = 0
	RecordHeaderTypeOffset       = 4
	RecordHeaderVersionMajor     = 9
	RecordHeaderVersionMinor     = 10
	RecordHeaderEncryptionOffset = 11
	RecordHeaderBytesOffset      = 12
	RecordHeaderTimeOffset       = 16

	RecordIndexTypeOffset       = 0
	RecordIndexVersionMajor     = 5
	RecordIndexVersionMinor     = 6
	RecordIndexEncryptionOffset = 7
	RecordIndexFileOffsetOffset = 8
	RecordIndexTimeOffset       = 16
)

// RED block layout (304-byte header).
const (
	REDBlockHeaderBytes = 304

	REDBlockCRCOffset              = 0
	REDBlockFlagsOffset            = 4
	REDBlockDetrendSlopeOffset     = 16
	REDBlockDetrendInterceptOffset = 20
	REDBlockScaleFactorOffset      = 24
	REDBlockDifferenceBytesOffset  = 28
	REDBlockNumberOfSamplesOffset  = 32
	REDBlockBlockBytesOffset       = 36
	REDBlockStartTimeOffset        = 40
	REDBlockStatisticsOffset       = 48
	REDBlockStatisticsBytes        = 256

	REDDiscontinuityMask    byte = 0x01
	REDLevel1EncryptionMask byte = 0x02
	REDLevel2EncryptionMask byte = 0x04
)

// RED reserved sentinel sample values and the legal si4 sample range.
// These correspond to the raw bit patterns 0x80000000, 0x80000001,
// 0x7FFFFFFF, 0x7FFFFFFE, and 0x80000002 respectively, reinterpreted as
// two's-complement int32.
const (
	REDNaN                int32 = -2147483648 // 0x80000000
	REDNegativeInfinity   int32 = -2147483647 // 0x80000001
	REDPositiveInfinity   int32 = 2147483647   // 0x7FFFFFFF
	REDMaximumSampleValue int32 = 2147483646   // 0x7FFFFFFE
	REDMinimumSampleValue int32 = -2147483646  // 0x80000002
)

// REDMaxDifferenceBytes returns the worst-case byte length of the
// difference-encoded payload for n samples (5 bytes/sample upper bound).
func REDMaxDifferenceBytes(n int64) int64 { return n * 5 }
