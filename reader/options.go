package reader

import (
	"go.uber.org/zap"

	"github.com/brainmaze/mefd/internal/options"
)

// config holds the settings Open applies before scanning a session
// directory.
type config struct {
	tolerantScan bool
	skipCRC      bool
	password1    string
	password2    string
	logger       *zap.Logger
}

func newConfig() *config {
	return &config{logger: zap.NewNop()}
}

// Option configures a Reader at Open time.
type Option = options.Option[*config]

// WithTolerantScan makes Open log and skip a channel or segment whose
// metadata fails to parse instead of failing the whole directory scan. Off
// by default: a corrupt channel fails Open.
func WithTolerantScan() Option {
	return options.NoError(func(c *config) { c.tolerantScan = true })
}

// WithSkipCRCValidation disables block_CRC checking on every decompressed
// RED block. Intended only for forensic recovery of a partially corrupt
// session.
func WithSkipCRCValidation() Option {
	return options.NoError(func(c *config) { c.skipCRC = true })
}

// WithPassword1 supplies the level-1 access password. If the session's
// Universal Headers carry a non-zero level-1 validation field, Open
// verifies the password against it and fails with errs.Unauthorized on
// mismatch.
func WithPassword1(password string) Option {
	return options.NoError(func(c *config) { c.password1 = password })
}

// WithPassword2 supplies the level-2 access password, mirroring
// WithPassword1.
func WithPassword2(password string) Option {
	return options.NoError(func(c *config) { c.password2 = password })
}

// WithLogger sets the structured logger Open and data-access methods write
// to. A nil logger is ignored; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}
