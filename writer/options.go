package writer

import (
	"go.uber.org/zap"

	"github.com/brainmaze/mefd/format"
	"github.com/brainmaze/mefd/internal/options"
)

// Config holds the settings a session is created with. BlockLen and the
// descriptive fields apply to every channel written through the session;
// UnitsConversionFactor is a session-wide default that every WriteData call
// overrides for its channel with the inverse of the scale it used.
type Config struct {
	blockLen              int
	maxNansWritten        int64
	dataUnits             string
	unitsConversionFactor float64
	recordingTimeOffset   int64
	gmtOffset             int32
	subjectName1          string
	subjectID             string
	recordingLocation     string
	channelDescription    string
	sessionDescription    string
	password1             string
	password2             string
	logger                *zap.Logger
}

func newConfig() *Config {
	return &Config{
		blockLen:              1000,
		unitsConversionFactor: 1.0,
		recordingTimeOffset:   format.UUTCNoEntry,
		gmtOffset:             format.GMTOffsetNoEntry,
		logger:                zap.NewNop(),
	}
}

// Option configures a session at Create time.
type Option = options.Option[*Config]

// WithBlockLen sets the number of samples per RED block (default 1000).
func WithBlockLen(n int) Option {
	return options.NoError(func(c *Config) { c.blockLen = n })
}

// WithMaxNansWritten records an advisory cap on NaN samples per channel. It
// has no enforced behavior; callers that want to stop writing on excessive
// NaNs must check their own counts.
func WithMaxNansWritten(n int64) Option {
	return options.NoError(func(c *Config) { c.maxNansWritten = n })
}

// WithDataUnits sets the default units description recorded on every new
// channel.
func WithDataUnits(units string) Option {
	return options.NoError(func(c *Config) { c.dataUnits = units })
}

// WithUnitsConversionFactor sets the default conversion factor given to every
// new channel. It is kept for channels written only through WriteRawData;
// each WriteData call, with or without an explicit precision, replaces it
// for its channel with the inverse of the scale it quantized with.
func WithUnitsConversionFactor(factor float64) Option {
	return options.NoError(func(c *Config) { c.unitsConversionFactor = factor })
}

// WithRecordingTimeOffset sets the recording_time_offset property stored in
// every segment's metadata.
func WithRecordingTimeOffset(offset int64) Option {
	return options.NoError(func(c *Config) { c.recordingTimeOffset = offset })
}

// WithGMTOffset sets the gmt_offset property, in seconds east of GMT.
func WithGMTOffset(offset int32) Option {
	return options.NoError(func(c *Config) { c.gmtOffset = offset })
}

// WithSubjectName sets the subject_name_1 property.
func WithSubjectName(name string) Option {
	return options.NoError(func(c *Config) { c.subjectName1 = name })
}

// WithSubjectID sets the subject_id property.
func WithSubjectID(id string) Option {
	return options.NoError(func(c *Config) { c.subjectID = id })
}

// WithRecordingLocation sets the recording_location property.
func WithRecordingLocation(location string) Option {
	return options.NoError(func(c *Config) { c.recordingLocation = location })
}

// WithChannelDescription sets the default channel_description stored on
// every new channel's segments.
func WithChannelDescription(desc string) Option {
	return options.NoError(func(c *Config) { c.channelDescription = desc })
}

// WithSessionDescription sets the session_description stored on every
// channel's segments.
func WithSessionDescription(desc string) Option {
	return options.NoError(func(c *Config) { c.sessionDescription = desc })
}

// WithPassword1 enables level-1 encryption/access control, deriving the
// level-1 key and validation field from password at Create time.
func WithPassword1(password string) Option {
	return options.NoError(func(c *Config) { c.password1 = password })
}

// WithPassword2 enables level-2 encryption/access control, mirroring
// WithPassword1.
func WithPassword2(password string) Option {
	return options.NoError(func(c *Config) { c.password2 = password })
}

// WithLogger sets the structured logger Create and the write path write to.
// A nil logger is ignored; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	})
}
