package reader

import (
	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/section"
)

// ChannelInfo summarizes one time-series channel aggregated across all of
// its segments.
type ChannelInfo struct {
	Name                  string
	Type                  format.ChannelType
	SamplingFrequency     float64
	NumberOfSamples       int64
	StartTime             int64
	EndTime               int64
	UnitsConversionFactor float64
	UnitsDescription      string
	ChannelDescription    string
	SessionDescription    string
}

// SegmentInfo describes one segment directory within a channel.
type SegmentInfo struct {
	Number          int
	Path            string
	StartTime       int64
	EndTime         int64
	StartSample     int64
	NumberOfSamples int64
	NumberOfBlocks  int64
}

// segmentState is the reader's in-memory record of one loaded segment: its
// public info plus the index table and data-file path needed to service
// GetRawData without re-parsing the .tidx file on every call.
type segmentState struct {
	info     SegmentInfo
	indices  []section.TimeSeriesIndex
	dataPath string
}

// channelState is the reader's in-memory record of one loaded channel.
type channelState struct {
	info     ChannelInfo
	segments []*segmentState
}
