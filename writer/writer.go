// Package writer creates and appends to a MEF3 session directory, turning
// float64 or raw si4 sample streams into RED-compressed blocks organized
// into segments and channels.
package writer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/brainmaze/mefd/endian"
	"github.com/brainmaze/mefd/errs"
	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/internal/cipher"
	"github.com/brainmaze/mefd/internal/crc"
	"github.com/brainmaze/mefd/internal/options"
	"github.com/brainmaze/mefd/internal/pool"
	"github.com/brainmaze/mefd/red"
	"github.com/brainmaze/mefd/section"
)

// Writer creates and appends to one MEF3 session directory.
type Writer struct {
	path        string
	sessionName string
	engine      endian.EndianEngine
	logger      *zap.Logger

	blockLen              int
	unitsConversionFactor float64
	dataUnits             string
	channelDescription    string
	sessionDescription    string
	recordingTimeOffset   int64
	gmtOffset             int32
	subjectName1          string
	subjectID             string
	recordingLocation     string

	levelUUID             [16]byte
	level1Key             []byte
	level2Key             []byte
	level1ValidationField [16]byte
	level2ValidationField [16]byte

	channels map[string]*channelState
	order    []string

	closed bool
}

// Create opens path for writing, appending the .mefd extension if missing.
// When overwrite is true, any existing directory at path is removed first;
// otherwise new segments are appended to whatever channels already exist.
func Create(path string, overwrite bool, opts ...Option) (*Writer, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if filepath.Ext(path) != ".mefd" {
		path += ".mefd"
	}

	if overwrite {
		if err := os.RemoveAll(path); err != nil {
			return nil, wrapIOErr(path, err)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, wrapIOErr(path, err)
	}

	w := &Writer{
		path:                  path,
		sessionName:           baseNameNoExt(path),
		engine:                endian.GetLittleEndianEngine(),
		logger:                cfg.logger,
		blockLen:              cfg.blockLen,
		unitsConversionFactor: cfg.unitsConversionFactor,
		dataUnits:             cfg.dataUnits,
		channelDescription:    cfg.channelDescription,
		sessionDescription:    cfg.sessionDescription,
		recordingTimeOffset:   cfg.recordingTimeOffset,
		gmtOffset:             cfg.gmtOffset,
		subjectName1:          cfg.subjectName1,
		subjectID:             cfg.subjectID,
		recordingLocation:     cfg.recordingLocation,
		levelUUID:             section.NewUUID(),
		channels:              make(map[string]*channelState),
	}

	if cfg.password1 != "" {
		key, err := cipher.DeriveKey(cfg.password1)
		if err != nil {
			return nil, err
		}
		w.level1Key = key
		w.level1ValidationField = cipher.DeriveValidationField(cfg.password1, w.levelUUID)
	}
	if cfg.password2 != "" {
		key, err := cipher.DeriveKey(cfg.password2)
		if err != nil {
			return nil, err
		}
		w.level2Key = key
		w.level2ValidationField = cipher.DeriveValidationField(cfg.password2, w.levelUUID)
	}

	w.logger.Info("created session", zap.String("path", path))

	return w, nil
}

// WriteData quantizes samples to si4 and writes them to channel. When
// precision is non-nil, the scale is 10^precision; otherwise the call
// auto-scales so the maximum absolute value maps to 90% of
// format.REDMaximumSampleValue. The inverse scale becomes the channel's
// units_conversion_factor.
func (w *Writer) WriteData(samples []float64, channel string, startUUTC int64, fs float64, precision *int, newSegment bool) error {
	if w.closed {
		return fmt.Errorf("writer: %w", errs.Closed)
	}
	if len(samples) == 0 {
		return nil
	}

	var scale float64
	if precision != nil {
		scale = math.Pow(10, float64(*precision))
	} else {
		maxAbs := 0.0
		for _, v := range samples {
			if math.IsNaN(v) {
				continue
			}
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs == 0 {
			scale = 1
		} else {
			scale = 0.9 * float64(format.REDMaximumSampleValue) / maxAbs
		}
	}

	quantized, cleanup := pool.GetInt32Slice(len(samples))
	defer cleanup()

	for i, v := range samples {
		if math.IsNaN(v) {
			quantized[i] = format.REDNaN
			continue
		}
		q := math.Round(v * scale)
		if q > float64(format.REDMaximumSampleValue) {
			q = float64(format.REDMaximumSampleValue)
		} else if q < float64(format.REDMinimumSampleValue) {
			q = float64(format.REDMinimumSampleValue)
		}
		quantized[i] = int32(q)
	}

	conversionFactor := 1.0
	if scale != 0 {
		conversionFactor = 1.0 / scale
	}

	ch, err := w.ensureChannel(channel, fs)
	if err != nil {
		return err
	}
	ch.unitsConversionFactor = conversionFactor

	return w.writeRawDataInternal(ch, quantized, startUUTC, newSegment)
}

// WriteRawData writes already-quantized si4 samples to channel, bypassing
// quantization entirely.
func (w *Writer) WriteRawData(samples []int32, channel string, startUUTC int64, fs float64, newSegment bool) error {
	if w.closed {
		return fmt.Errorf("writer: %w", errs.Closed)
	}
	if len(samples) == 0 {
		return nil
	}

	ch, err := w.ensureChannel(channel, fs)
	if err != nil {
		return err
	}

	return w.writeRawDataInternal(ch, samples, startUUTC, newSegment)
}

func (w *Writer) ensureChannel(name string, fs float64) (*channelState, error) {
	ch, ok := w.channels[name]
	if ok {
		if ch.samplingFrequency != fs {
			return nil, fmt.Errorf("writer: channel %q: %w", name, errs.SamplingRateMismatch)
		}
		return ch, nil
	}

	dirPath := filepath.Join(w.path, name+".timd")
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, wrapIOErr(dirPath, err)
	}

	ch = newChannelState(name, dirPath, fs)
	if w.unitsConversionFactor != 0 {
		ch.unitsConversionFactor = w.unitsConversionFactor
	} else {
		ch.unitsConversionFactor = 1.0
	}
	w.channels[name] = ch
	w.order = append(w.order, name)
	sort.Strings(w.order)

	return ch, nil
}

// writeRawDataInternal implements the blocking/segmentation/emission steps
// of the write path shared by WriteData and WriteRawData.
func (w *Writer) writeRawDataInternal(ch *channelState, samples []int32, startUUTC int64, newSegment bool) error {
	expectedNextTime := ch.lastEndTime
	if ch.lastEndTime != format.UUTCNoEntry {
		expectedNextTime = ch.lastEndTime + int64(math.Round(1e6/ch.samplingFrequency))
	}

	needNewSegment := newSegment || ch.currentSegment < 0
	if !needNewSegment {
		maxGap := 2 * float64(w.blockLen) * 1e6 / ch.samplingFrequency
		if math.Abs(float64(startUUTC-expectedNextTime)) > maxGap {
			needNewSegment = true
		}
	}

	crossedBoundary := needNewSegment
	if needNewSegment {
		if ch.currentSegment >= 0 {
			if err := w.finalizeSegment(ch); err != nil {
				return err
			}
		}
		if err := w.createSegment(ch); err != nil {
			return err
		}
		ch.segmentStartTime = startUUTC
	}

	base := ch.totalSamples
	samplesWritten := int64(0)
	first := true

	for samplesWritten < int64(len(samples)) {
		n := int64(w.blockLen)
		if remaining := int64(len(samples)) - samplesWritten; n > remaining {
			n = remaining
		}

		block := samples[samplesWritten : samplesWritten+n]
		blockStartTime := startUUTC + int64(float64(samplesWritten)*1e6/ch.samplingFrequency)
		discontinuity := first && crossedBoundary

		if err := w.writeBlock(ch, block, blockStartTime, base+samplesWritten, discontinuity); err != nil {
			return err
		}

		samplesWritten += n
		first = false
	}

	ch.totalSamples += int64(len(samples))
	ch.lastEndTime = startUUTC + int64(float64(len(samples)-1)*1e6/ch.samplingFrequency)

	return nil
}

func (w *Writer) createSegment(ch *channelState) error {
	ch.currentSegment++
	segName := fmt.Sprintf("%s-%06d.segd", ch.name, ch.currentSegment)
	segPath := filepath.Join(ch.dirPath, segName)
	if err := os.MkdirAll(segPath, 0o755); err != nil {
		return wrapIOErr(segPath, err)
	}

	dataPath := filepath.Join(segPath, fmt.Sprintf("%s-%06d.tdat", ch.name, ch.currentSegment))
	f, err := os.Create(dataPath)
	if err != nil {
		return wrapIOErr(dataPath, err)
	}

	uh := section.NewUniversalHeader(format.TimeSeriesDataFileType)
	uh.SegmentNumber = int32(ch.currentSegment)
	uh.ChannelName = ch.name
	uh.SessionName = w.sessionName
	uh.LevelUUID = w.levelUUID
	uh.FileUUID = section.NewUUID()
	uh.Level1PasswordValidationField = w.level1ValidationField
	uh.Level2PasswordValidationField = w.level2ValidationField
	if _, err := f.Write(uh.Bytes(w.engine)); err != nil {
		f.Close()
		return wrapIOErr(dataPath, err)
	}

	ch.dataFile = f
	ch.dataOffset = int64(format.UniversalHeaderBytes)
	ch.indices = nil
	ch.segmentStartSample = ch.totalSamples

	return nil
}

func (w *Writer) writeBlock(ch *channelState, samples []int32, startTime, startSample int64, discontinuity bool) error {
	level := format.NoEncryption
	var key []byte
	if w.level1Key != nil {
		level = format.Level1Encryption
		key = w.level1Key
	}

	buf, _, index, err := red.Encode(samples, startTime, w.engine, red.EncodeOptions{
		Discontinuity:   discontinuity,
		EncryptionLevel: level,
		Key:             key,
	})
	if err != nil {
		return err
	}

	index.FileOffset = ch.dataOffset
	index.StartSample = startSample

	if _, err := ch.dataFile.Write(buf); err != nil {
		return wrapIOErr(ch.dataFile.Name(), err)
	}

	ch.dataOffset += int64(len(buf))
	ch.indices = append(ch.indices, index)
	ch.totalBlocks++

	return nil
}

func (w *Writer) finalizeSegment(ch *channelState) error {
	if err := ch.dataFile.Close(); err != nil {
		return wrapIOErr(ch.dataFile.Name(), err)
	}
	ch.dataFile = nil

	segPath := filepath.Join(ch.dirPath, fmt.Sprintf("%s-%06d.segd", ch.name, ch.currentSegment))

	var totalSamples int64
	var maxBlockBytes int64
	var maxBlockSamples uint32
	var minStart, maxEnd int64 = format.UUTCNoEntry, format.UUTCNoEntry

	for _, idx := range ch.indices {
		totalSamples += int64(idx.NumberOfSamples)
		if int64(idx.BlockBytes) > maxBlockBytes {
			maxBlockBytes = int64(idx.BlockBytes)
		}
		if idx.NumberOfSamples > maxBlockSamples {
			maxBlockSamples = idx.NumberOfSamples
		}
		if minStart == format.UUTCNoEntry || idx.StartTime < minStart {
			minStart = idx.StartTime
		}
		blockEnd := idx.StartTime + int64(float64(idx.NumberOfSamples-1)*1e6/ch.samplingFrequency)
		if maxEnd == format.UUTCNoEntry || blockEnd > maxEnd {
			maxEnd = blockEnd
		}
	}

	blockInterval := int64(float64(maxBlockSamples) * 1e6 / ch.samplingFrequency)

	if err := w.writeMetadataFile(ch, segPath, minStart, maxEnd, totalSamples, maxBlockBytes, maxBlockSamples, blockInterval); err != nil {
		return err
	}
	if err := w.writeIndexFile(ch, segPath, minStart, maxEnd); err != nil {
		return err
	}

	return nil
}

func (w *Writer) writeMetadataFile(ch *channelState, segPath string, startTime, endTime, totalSamples, maxBlockBytes int64, maxBlockSamples uint32, blockInterval int64) error {
	buf := make([]byte, format.MetadataFileBytes)

	sec1 := section.NewMetadataSection1()
	sec1.WriteTo(buf)

	sec2 := section.NewTimeSeriesMetadataSection2()
	sec2.ChannelDescription = w.channelDescription
	sec2.SessionDescription = w.sessionDescription
	sec2.SamplingFrequency = ch.samplingFrequency
	sec2.UnitsConversionFactor = ch.unitsConversionFactor
	sec2.UnitsDescription = w.dataUnits
	sec2.StartSample = ch.segmentStartSample
	sec2.NumberOfSamples = totalSamples
	sec2.NumberOfBlocks = int64(len(ch.indices))
	sec2.MaximumBlockBytes = maxBlockBytes
	sec2.MaximumBlockSamples = maxBlockSamples
	sec2.BlockInterval = blockInterval
	if startTime != format.UUTCNoEntry && endTime != format.UUTCNoEntry {
		sec2.RecordingDuration = endTime - startTime
	}
	sec2.WriteTo(buf, w.engine)

	sec3 := section.NewMetadataSection3()
	sec3.RecordingTimeOffset = w.recordingTimeOffset
	sec3.GMTOffset = w.gmtOffset
	sec3.SubjectName1 = w.subjectName1
	sec3.SubjectID = w.subjectID
	sec3.RecordingLocation = w.recordingLocation
	sec3.WriteTo(buf, w.engine)

	uh := section.NewUniversalHeader(format.TimeSeriesMetadataFileType)
	uh.SegmentNumber = int32(ch.currentSegment)
	uh.ChannelName = ch.name
	uh.SessionName = w.sessionName
	uh.StartTime = startTime
	uh.EndTime = endTime
	uh.NumberOfEntries = 1
	uh.LevelUUID = w.levelUUID
	uh.FileUUID = section.NewUUID()
	uh.Level1PasswordValidationField = w.level1ValidationField
	uh.Level2PasswordValidationField = w.level2ValidationField
	uh.BodyCRC = crc.Calculate(buf[format.UniversalHeaderBytes:])
	copy(buf[:format.UniversalHeaderBytes], uh.Bytes(w.engine))

	path := filepath.Join(segPath, fmt.Sprintf("%s-%06d.tmet", ch.name, ch.currentSegment))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return wrapIOErr(path, err)
	}

	return nil
}

func (w *Writer) writeIndexFile(ch *channelState, segPath string, startTime, endTime int64) error {
	body := make([]byte, 0, len(ch.indices)*format.TimeSeriesIndexBytes)
	var maxEntrySize int64
	for _, idx := range ch.indices {
		body = append(body, idx.Bytes(w.engine)...)
		if int64(idx.BlockBytes) > maxEntrySize {
			maxEntrySize = int64(idx.BlockBytes)
		}
	}

	uh := section.NewUniversalHeader(format.TimeSeriesIndicesFileType)
	uh.SegmentNumber = int32(ch.currentSegment)
	uh.ChannelName = ch.name
	uh.SessionName = w.sessionName
	uh.StartTime = startTime
	uh.EndTime = endTime
	uh.NumberOfEntries = int64(len(ch.indices))
	uh.MaximumEntrySize = maxEntrySize
	uh.LevelUUID = w.levelUUID
	uh.FileUUID = section.NewUUID()
	uh.Level1PasswordValidationField = w.level1ValidationField
	uh.Level2PasswordValidationField = w.level2ValidationField
	uh.BodyCRC = crc.Calculate(body)

	buf := make([]byte, 0, format.UniversalHeaderBytes+len(body))
	buf = append(buf, uh.Bytes(w.engine)...)
	buf = append(buf, body...)

	path := filepath.Join(segPath, fmt.Sprintf("%s-%06d.tidx", ch.name, ch.currentSegment))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return wrapIOErr(path, err)
	}

	return nil
}

// Flush syncs every channel's currently open data file to stable storage.
func (w *Writer) Flush() error {
	if w.closed {
		return fmt.Errorf("writer: %w", errs.Closed)
	}
	for _, name := range w.order {
		ch := w.channels[name]
		if ch.dataFile == nil {
			continue
		}
		if err := ch.dataFile.Sync(); err != nil {
			return wrapIOErr(ch.dataFile.Name(), err)
		}
	}
	return nil
}

// Close finalizes every channel's current segment. After Close, any write
// fails with errs.Closed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	for _, name := range w.order {
		ch := w.channels[name]
		if ch.currentSegment < 0 || ch.dataFile == nil {
			continue
		}
		if err := w.finalizeSegment(ch); err != nil {
			return err
		}
	}

	w.logger.Info("closed session", zap.String("path", w.path))

	return nil
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func wrapIOErr(path string, err error) error {
	return fmt.Errorf("writer: %s: %w: %v", path, errs.IO, err)
}
