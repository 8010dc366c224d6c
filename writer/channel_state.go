package writer

import (
	"os"

	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/section"
)

// channelState tracks one channel's write path: the currently open
// segment's data file plus the running index table for that segment, and
// channel-cumulative counters carried across segment boundaries.
type channelState struct {
	name              string
	dirPath           string
	samplingFrequency float64

	unitsConversionFactor float64

	currentSegment int
	dataFile       *os.File
	dataOffset     int64
	indices        []section.TimeSeriesIndex

	segmentStartTime   int64
	segmentStartSample int64

	totalSamples int64
	totalBlocks  int64

	lastEndTime int64
}

func newChannelState(name, dirPath string, fs float64) *channelState {
	return &channelState{
		name:              name,
		dirPath:           dirPath,
		samplingFrequency: fs,
		currentSegment:    -1,
		lastEndTime:       format.UUTCNoEntry,
	}
}
