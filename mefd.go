// Package mefd provides a high-performance binary format for storing
// multi-channel physiological time-series recordings, with optional
// per-access-level encryption and lossless sample compression.
//
// MEF3 organizes a recording as a directory tree: a session (`.mefd`)
// contains one directory per channel (`.timd` for time series, `.vidd`
// for video), each channel contains one or more segments (`.segd`), and
// each segment stores its metadata, block index, and compressed sample
// data in three sibling files.
//
// # Core Features
//
//   - RED (Range Encoded Differences) lossless compression of sample blocks
//   - Two independent access levels with AES-128 encryption and password
//     validation
//   - CRC-32 integrity checking on every header and compressed block
//   - Segment-based append: new data never rewrites previously written bytes
//   - Time-range and sample-range queries that decompress only the blocks
//     a query actually intersects
//
// # Basic Usage
//
// Writing a session:
//
//	import "github.com/brainmaze/mefd"
//
//	w, err := mefd.Create("recording", true, writer.WithBlockLen(1000))
//	samples := []float64{1.0, 2.0, 3.0}
//	precision := 3
//	err = w.WriteData(samples, "eeg1", startUUTC, 1000.0, &precision, false)
//	err = w.Close()
//
// Reading it back:
//
//	r, err := mefd.Open("recording.mefd")
//	values, err := r.GetData("eeg1", nil, nil)
//	err = r.Close()
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the reader
// and writer packages. For advanced usage and fine-grained control
// (functional options, direct section/red access), use those packages
// directly.
package mefd

import (
	"github.com/brainmaze/mefd/reader"
	"github.com/brainmaze/mefd/writer"
)

// Open scans a MEF3 session directory and returns a Reader ready to
// serve Channels/ChannelInfo/GetData/GetRawData queries.
//
// See reader.WithTolerantScan, reader.WithSkipCRCValidation,
// reader.WithPassword1/WithPassword2, and reader.WithLogger for
// available options.
func Open(path string, opts ...reader.Option) (*reader.Reader, error) {
	return reader.Open(path, opts...)
}

// Create opens path (appending the .mefd extension if missing) for
// writing. When overwrite is true, any existing directory at path is
// removed first.
//
// See writer.WithBlockLen, writer.WithDataUnits,
// writer.WithPassword1/WithPassword2, and the other writer.Option
// constructors for available session defaults.
func Create(path string, overwrite bool, opts ...writer.Option) (*writer.Writer, error) {
	return writer.Create(path, overwrite, opts...)
}
