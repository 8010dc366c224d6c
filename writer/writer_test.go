package writer

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/reader"
)

func TestCreate_AppendsMefdExtension(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true)
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(dir, "session.mefd"))
	require.NoError(t, w.Close())
}

func TestWriteRawData_SingleSegment_TenBlocks(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true, WithBlockLen(100))
	require.NoError(t, err)

	samples := make([]int32, 1000)
	for i := range samples {
		samples[i] = int32(i)
	}

	require.NoError(t, w.WriteRawData(samples, "eeg1", 0, 1000, false))
	require.NoError(t, w.Close())

	r, err := reader.Open(filepath.Join(dir, "session.mefd"))
	require.NoError(t, err)
	defer r.Close()

	segs, err := r.Segments("eeg1")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	require.EqualValues(t, 1000, segs[0].NumberOfSamples)
	require.EqualValues(t, 10, segs[0].NumberOfBlocks)

	got, err := r.GetRawData("eeg1", 0, 1000)
	require.NoError(t, err)
	require.Equal(t, samples, got)
}

func TestWriteRawData_SegmentEndTimeExcludesTrailingInterval(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true, WithBlockLen(100))
	require.NoError(t, err)

	require.NoError(t, w.WriteRawData(make([]int32, 100), "eeg1", 0, 1000, false))
	require.NoError(t, w.Close())

	r, err := reader.Open(filepath.Join(dir, "session.mefd"))
	require.NoError(t, err)
	defer r.Close()

	segs, err := r.Segments("eeg1")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	// 100 samples at 1000Hz starting at t=0: last sample is index 99,
	// so EndTime = (100-1) * 1e6/1000 = 99000, not 100000.
	require.EqualValues(t, 99000, segs[0].EndTime)
}

func TestWriteRawData_IndexStartSamplesAreChannelCumulative(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true, WithBlockLen(100))
	require.NoError(t, err)

	samples := make([]int32, 1000)
	require.NoError(t, w.WriteRawData(samples, "eeg1", 0, 1000, false))
	require.NoError(t, w.Close())

	ch := w.channels["eeg1"]
	require.Len(t, ch.indices, 10)
	for i, idx := range ch.indices {
		require.EqualValues(t, i*100, idx.StartSample)
	}
}

func TestWriteRawData_NewSegmentFlag_StartsDiscontinuity(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true, WithBlockLen(100))
	require.NoError(t, err)

	require.NoError(t, w.WriteRawData(make([]int32, 100), "eeg1", 0, 1000, false))
	require.NoError(t, w.WriteRawData(make([]int32, 100), "eeg1", 200_000, 1000, true))
	require.NoError(t, w.Close())

	ch := w.channels["eeg1"]
	require.Len(t, ch.indices, 1)
	require.NotZero(t, ch.indices[0].REDBlockFlags&0x01)
}

func TestWriteRawData_SamplingRateMismatch(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true)
	require.NoError(t, err)

	require.NoError(t, w.WriteRawData(make([]int32, 10), "eeg1", 0, 1000, false))
	err = w.WriteRawData(make([]int32, 10), "eeg1", 0, 500, false)
	require.Error(t, err)
}

func TestWriteData_QuantizationRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true, WithBlockLen(50))
	require.NoError(t, err)

	values := make([]float64, 100)
	for i := range values {
		values[i] = math.Sin(float64(i)) * 100
	}
	values[5] = math.NaN()

	precision := 3
	require.NoError(t, w.WriteData(values, "eeg1", 0, 1000, &precision, false))
	require.NoError(t, w.Close())

	r, err := reader.Open(filepath.Join(dir, "session.mefd"))
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetData("eeg1", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 100)
	require.True(t, math.IsNaN(got[5]))
	for i, v := range values {
		if i == 5 {
			continue
		}
		require.InDelta(t, v, got[i], 1e-3)
	}
}

func TestWriteAfterClose_Fails(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(filepath.Join(dir, "session"), true)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = w.WriteRawData(make([]int32, 10), "eeg1", 0, 1000, false)
	require.Error(t, err)
}
