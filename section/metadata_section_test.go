package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
)

func TestMetadataSection1_RoundTrip(t *testing.T) {
	buf := make([]byte, format.MetadataFileBytes)

	s := NewMetadataSection1()
	s.Section2Encryption = format.Level1Encryption
	s.Section3Encryption = format.Level2Encryption
	s.WriteTo(buf)

	parsed, err := ParseMetadataSection1(buf)
	require.NoError(t, err)
	require.Equal(t, s.Section2Encryption, parsed.Section2Encryption)
	require.Equal(t, s.Section3Encryption, parsed.Section3Encryption)
	require.Equal(t, s.ProtectedRegion, parsed.ProtectedRegion)
	require.Equal(t, s.DiscretionaryRegion, parsed.DiscretionaryRegion)
}

func TestMetadataSection1_RejectsWrongLength(t *testing.T) {
	_, err := ParseMetadataSection1(make([]byte, 1536))
	require.ErrorIs(t, err, errs.InvalidFormat)
}

func TestMetadataSection2_RoundTrip(t *testing.T) {
	buf := make([]byte, format.MetadataFileBytes)

	s := NewTimeSeriesMetadataSection2()
	s.ChannelDescription = "EEG channel"
	s.SamplingFrequency = 1000.0
	s.NumberOfSamples = 5000
	s.UnitsDescription = "uV"
	s.WriteTo(buf, engine)

	parsed, err := ParseTimeSeriesMetadataSection2(buf, engine)
	require.NoError(t, err)
	require.Equal(t, s.ChannelDescription, parsed.ChannelDescription)
	require.Equal(t, s.SamplingFrequency, parsed.SamplingFrequency)
	require.Equal(t, s.NumberOfSamples, parsed.NumberOfSamples)
	require.Equal(t, s.UnitsDescription, parsed.UnitsDescription)
}

func TestMetadataSection2_NoEntrySentinels(t *testing.T) {
	s := NewTimeSeriesMetadataSection2()
	require.Equal(t, format.RecordingDurationNoEntry, s.RecordingDuration)
	require.Equal(t, format.NumberOfSamplesNoEntry, s.NumberOfSamples)
	require.Equal(t, format.MaximumBlockSamplesNoEntry, s.MaximumBlockSamples)
}

func TestMetadataSection3_RoundTrip(t *testing.T) {
	buf := make([]byte, format.MetadataFileBytes)

	s := NewMetadataSection3()
	s.GMTOffset = -28800
	s.SubjectName1 = "Jane"
	s.SubjectName2 = "Doe"
	s.SubjectID = "subj-001"
	s.RecordingLocation = "Lab 3"
	s.WriteTo(buf, engine)

	parsed, err := ParseMetadataSection3(buf, engine)
	require.NoError(t, err)
	require.Equal(t, s.GMTOffset, parsed.GMTOffset)
	require.Equal(t, s.SubjectName1, parsed.SubjectName1)
	require.Equal(t, s.SubjectName2, parsed.SubjectName2)
	require.Equal(t, s.SubjectID, parsed.SubjectID)
	require.Equal(t, s.RecordingLocation, parsed.RecordingLocation)
}

func TestMetadataSections_DoNotOverlap(t *testing.T) {
	buf := make([]byte, format.MetadataFileBytes)

	s1 := NewMetadataSection1()
	s1.Section2Encryption = 7 // sentinel value distinguishable from any other section's bytes
	s1.WriteTo(buf)

	s2 := NewTimeSeriesMetadataSection2()
	s2.ChannelDescription = "marker"
	s2.WriteTo(buf, engine)

	s3 := NewMetadataSection3()
	s3.SubjectID = "marker"
	s3.WriteTo(buf, engine)

	p1, err := ParseMetadataSection1(buf)
	require.NoError(t, err)
	require.Equal(t, int8(7), p1.Section2Encryption)

	p2, err := ParseTimeSeriesMetadataSection2(buf, engine)
	require.NoError(t, err)
	require.Equal(t, "marker", p2.ChannelDescription)

	p3, err := ParseMetadataSection3(buf, engine)
	require.NoError(t, err)
	require.Equal(t, "marker", p3.SubjectID)
}
