// Package reader opens a MEF3 session directory and serves time-range and
// property queries over its channels, decompressing only the RED blocks a
// query actually intersects.
package reader

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/internal/cipher"
	"github.com/brainmaze/mefd/internal/options"
	"github.com/brainmaze/mefd/internal/pool"
	"github.com/brainmaze/mefd/red"
	"github.com/brainmaze/mefd/section"
)

// Reader serves read-only access to one MEF3 session directory. The zero
// value is not usable; construct with Open.
type Reader struct {
	path     string
	engine   endian.EndianEngine
	logger   *zap.Logger
	tolerant bool
	skipCRC  bool

	sessionName string
	startTime   int64
	endTime     int64

	channels map[string]*channelState
	order    []string

	haveLevelInfo          bool
	levelUUID              [16]byte
	level1ValidationField  [16]byte
	level2ValidationField  [16]byte
	level1Key              []byte
	level2Key              []byte

	closed bool
}

// Open scans path (a session directory ending in .mefd) and loads every
// time-series channel's metadata and block index. Video channels (.vidd)
// are recognized and skipped.
func Open(path string, opts ...Option) (*Reader, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, wrapIOErr(path, err)
	}

	r := &Reader{
		path:        path,
		engine:      endian.GetLittleEndianEngine(),
		logger:      cfg.logger,
		tolerant:    cfg.tolerantScan,
		skipCRC:     cfg.skipCRC,
		sessionName: strings.TrimSuffix(filepath.Base(path), ".mefd"),
		startTime:   format.UUTCNoEntry,
		endTime:     format.UUTCNoEntry,
		channels:    make(map[string]*channelState),
	}

	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir() && strings.HasSuffix(name, ".timd"):
			chName := strings.TrimSuffix(name, ".timd")
			ch, err := r.loadChannel(filepath.Join(path, name), chName)
			if err != nil {
				if r.tolerant {
					r.logger.Warn("skipping channel that failed to load",
						zap.String("channel", chName), zap.Error(err))
					continue
				}
				return nil, err
			}
			r.channels[chName] = ch
			r.order = append(r.order, chName)
			r.mergeSessionBounds(ch.info.StartTime, ch.info.EndTime)
		case e.IsDir() && strings.HasSuffix(name, ".vidd"):
			r.logger.Debug("skipping video channel", zap.String("channel", name))
		default:
			continue
		}
	}

	sort.Strings(r.order)

	if cfg.password1 != "" || cfg.password2 != "" {
		if err := r.authenticate(cfg); err != nil {
			return nil, err
		}
	}

	r.logger.Info("opened session", zap.String("path", path), zap.Int("channels", len(r.order)))

	return r, nil
}

func (r *Reader) mergeSessionBounds(start, end int64) {
	if start != format.UUTCNoEntry && (r.startTime == format.UUTCNoEntry || start < r.startTime) {
		r.startTime = start
	}
	if end != format.UUTCNoEntry && (r.endTime == format.UUTCNoEntry || end > r.endTime) {
		r.endTime = end
	}
}

func (r *Reader) authenticate(cfg *config) error {
	if cfg.password1 != "" {
		key, err := cipher.DeriveKey(cfg.password1)
		if err != nil {
			return err
		}
		if r.haveLevelInfo && r.level1ValidationField != ([16]byte{}) {
			want := cipher.DeriveValidationField(cfg.password1, r.levelUUID)
			if want != r.level1ValidationField {
				return fmt.Errorf("reader: level-1 password rejected for %s: %w", r.path, errs.Unauthorized)
			}
		}
		r.level1Key = key
	}
	if cfg.password2 != "" {
		key, err := cipher.DeriveKey(cfg.password2)
		if err != nil {
			return err
		}
		if r.haveLevelInfo && r.level2ValidationField != ([16]byte{}) {
			want := cipher.DeriveValidationField(cfg.password2, r.levelUUID)
			if want != r.level2ValidationField {
				return fmt.Errorf("reader: level-2 password rejected for %s: %w", r.path, errs.Unauthorized)
			}
		}
		r.level2Key = key
	}
	return nil
}

func (r *Reader) loadChannel(dirPath, name string) (*channelState, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, wrapIOErr(dirPath, err)
	}

	var segNames []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".segd") {
			segNames = append(segNames, e.Name())
		}
	}
	sort.Strings(segNames)

	ch := &channelState{info: ChannelInfo{
		Name:      name,
		Type:      format.TimeSeriesChannelType,
		StartTime: format.UUTCNoEntry,
		EndTime:   format.UUTCNoEntry,
	}}

	for i, segName := range segNames {
		seg, sec2, err := r.loadSegment(filepath.Join(dirPath, segName), i)
		if err != nil {
			if r.tolerant {
				r.logger.Warn("skipping segment that failed to load",
					zap.String("channel", name), zap.String("segment", segName), zap.Error(err))
				continue
			}
			return nil, err
		}

		ch.segments = append(ch.segments, seg)
		ch.info.NumberOfSamples += seg.info.NumberOfSamples
		if seg.info.StartTime != format.UUTCNoEntry &&
			(ch.info.StartTime == format.UUTCNoEntry || seg.info.StartTime < ch.info.StartTime) {
			ch.info.StartTime = seg.info.StartTime
		}
		if seg.info.EndTime != format.UUTCNoEntry &&
			(ch.info.EndTime == format.UUTCNoEntry || seg.info.EndTime > ch.info.EndTime) {
			ch.info.EndTime = seg.info.EndTime
		}

		if len(ch.segments) == 1 {
			ch.info.SamplingFrequency = sec2.SamplingFrequency
			ch.info.UnitsConversionFactor = sec2.UnitsConversionFactor
			ch.info.UnitsDescription = sec2.UnitsDescription
			ch.info.ChannelDescription = sec2.ChannelDescription
			ch.info.SessionDescription = sec2.SessionDescription
		}
	}

	if len(ch.segments) == 0 {
		return nil, fmt.Errorf("reader: channel %q has no usable segments: %w", name, errs.InvalidFormat)
	}

	return ch, nil
}

func (r *Reader) loadSegment(segPath string, number int) (*segmentState, section.TimeSeriesMetadataSection2, error) {
	var sec2 section.TimeSeriesMetadataSection2

	tmetPath, err := findFileWithSuffix(segPath, ".tmet")
	if err != nil {
		return nil, sec2, err
	}
	tidxPath, err := findFileWithSuffix(segPath, ".tidx")
	if err != nil {
		return nil, sec2, err
	}
	tdatPath, err := findFileWithSuffix(segPath, ".tdat")
	if err != nil {
		return nil, sec2, err
	}

	metaBuf, err := os.ReadFile(tmetPath)
	if err != nil {
		return nil, sec2, wrapIOErr(tmetPath, err)
	}
	if len(metaBuf) != format.MetadataFileBytes {
		return nil, sec2, fmt.Errorf("reader: %s: expected %d bytes, got %d: %w",
			tmetPath, format.MetadataFileBytes, len(metaBuf), errs.InvalidFormat)
	}

	uh, err := section.ParseUniversalHeader(metaBuf[:format.UniversalHeaderBytes], r.engine)
	if err != nil {
		return nil, sec2, err
	}
	sec2, err = section.ParseTimeSeriesMetadataSection2(metaBuf, r.engine)
	if err != nil {
		return nil, sec2, err
	}

	if !r.haveLevelInfo {
		r.levelUUID = uh.LevelUUID
		r.level1ValidationField = uh.Level1PasswordValidationField
		r.level2ValidationField = uh.Level2PasswordValidationField
		r.haveLevelInfo = true
	}

	idxBuf, err := os.ReadFile(tidxPath)
	if err != nil {
		return nil, sec2, wrapIOErr(tidxPath, err)
	}
	if len(idxBuf) < format.UniversalHeaderBytes {
		return nil, sec2, fmt.Errorf("reader: %s: truncated universal header: %w", tidxPath, errs.InvalidFormat)
	}

	idxUH, err := section.ParseUniversalHeader(idxBuf[:format.UniversalHeaderBytes], r.engine)
	if err != nil {
		return nil, sec2, err
	}

	entryCount := int(idxUH.NumberOfEntries)
	if entryCount < 0 {
		entryCount = 0
	}
	indices := make([]section.TimeSeriesIndex, 0, entryCount)
	offset := format.UniversalHeaderBytes
	for i := 0; i < entryCount; i++ {
		end := offset + format.TimeSeriesIndexBytes
		if end > len(idxBuf) {
			return nil, sec2, fmt.Errorf("reader: %s: truncated index table: %w", tidxPath, errs.InvalidFormat)
		}
		idx, err := section.ParseTimeSeriesIndex(idxBuf[offset:end], r.engine)
		if err != nil {
			return nil, sec2, err
		}
		indices = append(indices, idx)
		offset = end
	}

	seg := &segmentState{
		dataPath: tdatPath,
		indices:  indices,
		info: SegmentInfo{
			Number:          number,
			Path:            segPath,
			StartTime:       uh.StartTime,
			EndTime:         uh.EndTime,
			StartSample:     sec2.StartSample,
			NumberOfSamples: sec2.NumberOfSamples,
			NumberOfBlocks:  sec2.NumberOfBlocks,
		},
	}

	return seg, sec2, nil
}

// Channels returns the session's time-series channel names, sorted.
func (r *Reader) Channels() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ChannelInfo returns the aggregated info for one channel.
func (r *Reader) ChannelInfo(name string) (ChannelInfo, error) {
	ch, ok := r.channels[name]
	if !ok {
		return ChannelInfo{}, fmt.Errorf("reader: channel %q: %w", name, errs.NotFound)
	}
	return ch.info, nil
}

// Segments returns one channel's segments in numeric order.
func (r *Reader) Segments(name string) ([]SegmentInfo, error) {
	ch, ok := r.channels[name]
	if !ok {
		return nil, fmt.Errorf("reader: channel %q: %w", name, errs.NotFound)
	}
	out := make([]SegmentInfo, len(ch.segments))
	for i, seg := range ch.segments {
		out[i] = seg.info
	}
	return out, nil
}

// GetRawData returns the decoded si4 samples of channel name over the
// half-open sample range [startSample, endSample).
func (r *Reader) GetRawData(name string, startSample, endSample int64) ([]int32, error) {
	if r.closed {
		return nil, fmt.Errorf("reader: %w", errs.Closed)
	}
	ch, ok := r.channels[name]
	if !ok {
		return nil, fmt.Errorf("reader: channel %q: %w", name, errs.NotFound)
	}
	if endSample <= startSample {
		return []int32{}, nil
	}

	out := make([]int32, 0, endSample-startSample)
	for _, seg := range ch.segments {
		segStart := seg.info.StartSample
		segEnd := segStart + seg.info.NumberOfSamples
		if segEnd <= startSample || segStart >= endSample {
			continue
		}
		samples, err := r.decompressBlocks(seg, startSample, endSample)
		if err != nil {
			return nil, err
		}
		out = append(out, samples...)
	}

	return out, nil
}

// decompressBlocks reads and decodes every block of seg that overlaps
// [startSample, endSample), using a single pooled buffer sized to the
// overlapping byte span instead of one allocation per block.
func (r *Reader) decompressBlocks(seg *segmentState, startSample, endSample int64) ([]int32, error) {
	type span struct {
		idx    section.TimeSeriesIndex
		offset int // offset of this block's bytes within the pooled buffer
	}

	var spans []span
	var totalBytes int
	for _, idx := range seg.indices {
		blkStart := idx.StartSample
		blkEnd := blkStart + int64(idx.NumberOfSamples)
		if blkEnd <= startSample || blkStart >= endSample {
			continue
		}
		spans = append(spans, span{idx: idx, offset: totalBytes})
		totalBytes += int(idx.BlockBytes)
	}
	if len(spans) == 0 {
		return nil, nil
	}

	f, err := os.Open(seg.dataPath)
	if err != nil {
		return nil, wrapIOErr(seg.dataPath, err)
	}
	defer f.Close()

	segBuf := pool.GetSegmentBuffer()
	defer pool.PutSegmentBuffer(segBuf)
	segBuf.ExtendOrGrow(totalBytes)
	raw := segBuf.Bytes()

	for _, sp := range spans {
		blockBuf := raw[sp.offset : sp.offset+int(sp.idx.BlockBytes)]
		if _, err := f.ReadAt(blockBuf, sp.idx.FileOffset); err != nil {
			return nil, wrapIOErr(seg.dataPath, err)
		}
	}

	var out []int32
	for _, sp := range spans {
		blockBuf := raw[sp.offset : sp.offset+int(sp.idx.BlockBytes)]
		blkStart := sp.idx.StartSample
		blkEnd := blkStart + int64(sp.idx.NumberOfSamples)

		samples, _, err := red.Decode(blockBuf, r.engine, red.DecodeOptions{
			SkipCRCValidation: r.skipCRC,
			Level1Key:         r.level1Key,
			Level2Key:         r.level2Key,
		})
		if err != nil {
			return nil, err
		}

		localStart := int64(0)
		if startSample > blkStart {
			localStart = startSample - blkStart
		}
		localEnd := int64(len(samples))
		if endSample < blkEnd {
			localEnd = endSample - blkStart
		}
		out = append(out, samples[localStart:localEnd]...)
	}

	return out, nil
}

// GetData maps startTime/endTime (nil means "from the start"/"to the end")
// to a sample range, reads the raw si4 samples, and applies the channel's
// units conversion factor. RED_NAN samples map to math.NaN().
func (r *Reader) GetData(name string, startTime, endTime *int64) ([]float64, error) {
	if r.closed {
		return nil, fmt.Errorf("reader: %w", errs.Closed)
	}
	ch, ok := r.channels[name]
	if !ok {
		return nil, fmt.Errorf("reader: channel %q: %w", name, errs.NotFound)
	}

	var startSample int64
	if startTime != nil {
		startSample = sampleFromTime(*startTime, ch.info.StartTime, ch.info.SamplingFrequency)
	}
	endSample := ch.info.NumberOfSamples
	if endTime != nil {
		endSample = sampleFromTime(*endTime, ch.info.StartTime, ch.info.SamplingFrequency)
	}

	startSample = clampSample(startSample, ch.info.NumberOfSamples)
	endSample = clampSample(endSample, ch.info.NumberOfSamples)

	raw, err := r.GetRawData(name, startSample, endSample)
	if err != nil {
		return nil, err
	}

	conversion := ch.info.UnitsConversionFactor
	if conversion == 0 {
		conversion = 1
	}

	out := make([]float64, len(raw))
	for i, s := range raw {
		if s == format.REDNaN {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(s) * conversion
	}

	return out, nil
}

func sampleFromTime(t, channelStart int64, fs float64) int64 {
	return int64(math.Floor(float64(t-channelStart) * fs / 1e6))
}

func clampSample(s, total int64) int64 {
	if s < 0 {
		return 0
	}
	if s > total {
		return total
	}
	return s
}

// NumericProperty looks up a numeric property by name. channel == "" queries
// session-level properties (start_time, end_time, duration); a non-empty
// channel queries channel-level properties.
func (r *Reader) NumericProperty(name string, channel string) (float64, error) {
	if channel == "" {
		switch name {
		case "start_time":
			return float64(r.startTime), nil
		case "end_time":
			return float64(r.endTime), nil
		case "duration":
			return float64(r.endTime - r.startTime), nil
		}
		return 0, fmt.Errorf("reader: property %q: %w", name, errs.NotFound)
	}

	ch, ok := r.channels[channel]
	if !ok {
		return 0, fmt.Errorf("reader: channel %q: %w", channel, errs.NotFound)
	}
	switch name {
	case "fsamp", "sampling_frequency":
		return ch.info.SamplingFrequency, nil
	case "num_samples", "number_of_samples":
		return float64(ch.info.NumberOfSamples), nil
	case "start_time":
		return float64(ch.info.StartTime), nil
	case "end_time":
		return float64(ch.info.EndTime), nil
	case "units_conversion_factor":
		return ch.info.UnitsConversionFactor, nil
	}
	return 0, fmt.Errorf("reader: property %q: %w", name, errs.NotFound)
}

// StringProperty looks up a string property by name, following the same
// session/channel dispatch as NumericProperty.
func (r *Reader) StringProperty(name string, channel string) (string, error) {
	if channel == "" {
		switch name {
		case "session_name":
			return r.sessionName, nil
		case "path":
			return r.path, nil
		}
		return "", fmt.Errorf("reader: property %q: %w", name, errs.NotFound)
	}

	ch, ok := r.channels[channel]
	if !ok {
		return "", fmt.Errorf("reader: channel %q: %w", channel, errs.NotFound)
	}
	switch name {
	case "unit", "units":
		return ch.info.UnitsDescription, nil
	case "channel_name":
		return ch.info.Name, nil
	}
	return "", fmt.Errorf("reader: property %q: %w", name, errs.NotFound)
}

// Close marks the reader closed. The reader holds file descriptors only for
// the duration of a GetRawData call, so there is nothing else to release.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.logger.Info("closed session", zap.String("path", r.path))
	return nil
}

func findFileWithSuffix(dir, suffix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", wrapIOErr(dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("reader: %s: no %s file found: %w", dir, suffix, errs.InvalidFormat)
}

func wrapIOErr(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("reader: %s: %w", path, errs.NotFound)
	}
	return fmt.Errorf("reader: %s: %w: %v", path, errs.IO, err)
}
