package reader_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/reader"
	"github.com/brainmaze/mefd/writer"
)

func createSession(t *testing.T, name string, build func(w *writer.Writer)) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	w, err := writer.Create(path, true)
	require.NoError(t, err)
	build(w)
	require.NoError(t, w.Close())
	return path + ".mefd"
}

func TestOpen_SingleChannelRoundTrip(t *testing.T) {
	samples := make([]int32, 500)
	for i := range samples {
		samples[i] = int32(i * 2)
	}

	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(samples, "eeg1", 0, 1000, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, []string{"eeg1"}, r.Channels())

	info, err := r.ChannelInfo("eeg1")
	require.NoError(t, err)
	require.Equal(t, float64(1000), info.SamplingFrequency)
	require.EqualValues(t, 500, info.NumberOfSamples)

	got, err := r.GetRawData("eeg1", 0, 500)
	require.NoError(t, err)
	require.Equal(t, samples, got)
}

func TestOpen_MultipleChannels(t *testing.T) {
	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(make([]int32, 100), "eeg1", 0, 1000, false))
		require.NoError(t, w.WriteRawData(make([]int32, 200), "eeg2", 0, 500, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.ElementsMatch(t, []string{"eeg1", "eeg2"}, r.Channels())

	info2, err := r.ChannelInfo("eeg2")
	require.NoError(t, err)
	require.Equal(t, float64(500), info2.SamplingFrequency)
	require.EqualValues(t, 200, info2.NumberOfSamples)
}

func TestGetData_TimeRangeSlice(t *testing.T) {
	samples := make([]int32, 1000)
	for i := range samples {
		samples[i] = int32(i)
	}

	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(samples, "eeg1", 0, 1000, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	start := int64(100_000)
	end := int64(200_000)
	got, err := r.GetData("eeg1", &start, &end)
	require.NoError(t, err)
	require.Len(t, got, 100)
	require.Equal(t, float64(100), got[0])
}

func TestGetData_NaNRoundTrip(t *testing.T) {
	values := []float64{1.0, math.NaN(), 3.0}

	path := createSession(t, "session", func(w *writer.Writer) {
		precision := 2
		require.NoError(t, w.WriteData(values, "eeg1", 0, 1000, &precision, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetData("eeg1", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.InDelta(t, 1.0, got[0], 1e-2)
	require.True(t, math.IsNaN(got[1]))
	require.InDelta(t, 3.0, got[2], 1e-2)
}

func TestNumericProperty_AndStringProperty(t *testing.T) {
	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(make([]int32, 100), "eeg1", 0, 1000, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	fs, err := r.NumericProperty("fsamp", "eeg1")
	require.NoError(t, err)
	require.Equal(t, float64(1000), fs)

	_, err = r.NumericProperty("does_not_exist", "eeg1")
	require.ErrorIs(t, err, errs.NotFound)

	name, err := r.StringProperty("channel_name", "eeg1")
	require.NoError(t, err)
	require.Equal(t, "eeg1", name)
}

func TestChannels_UnknownChannel(t *testing.T) {
	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(make([]int32, 10), "eeg1", 0, 1000, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ChannelInfo("missing")
	require.ErrorIs(t, err, errs.NotFound)
}

func TestGetRawData_AfterClose_Fails(t *testing.T) {
	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(make([]int32, 10), "eeg1", 0, 1000, false))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.GetRawData("eeg1", 0, 10)
	require.ErrorIs(t, err, errs.Closed)
}

func TestOpen_MultiSegment(t *testing.T) {
	path := createSession(t, "session", func(w *writer.Writer) {
		require.NoError(t, w.WriteRawData(make([]int32, 100), "eeg1", 0, 1000, false))
		require.NoError(t, w.WriteRawData(make([]int32, 50), "eeg1", 10_000_000, 1000, true))
	})

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	segs, err := r.Segments("eeg1")
	require.NoError(t, err)
	require.Len(t, segs, 2)

	info, err := r.ChannelInfo("eeg1")
	require.NoError(t, err)
	require.EqualValues(t, 150, info.NumberOfSamples)

	got, err := r.GetRawData("eeg1", 0, 150)
	require.NoError(t, err)
	require.Len(t, got, 150)
}
