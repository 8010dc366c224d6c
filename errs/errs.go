// Package errs defines the sentinel errors returned throughout this module.
// Callers should match them with errors.Is, never string comparison.
package errs

import "errors"

var (
	// IO wraps a failure from the underlying filesystem (open, read, write,
	// seek, stat).
	IO = errors.New("mefd: i/o error")

	// NotFound is returned when a requested channel, segment, or property
	// name does not exist.
	NotFound = errors.New("mefd: not found")

	// InvalidFormat is returned when a file's structure does not match the
	// MEF 3.0 layout (wrong size, bad magic/type code, unsupported version).
	InvalidFormat = errors.New("mefd: invalid format")

	// CorruptBlock is returned when a RED block fails its CRC check.
	CorruptBlock = errors.New("mefd: corrupt block")

	// Unauthorized is returned when an encrypted block or section cannot be
	// decrypted with the password(s) supplied to the reader.
	Unauthorized = errors.New("mefd: unauthorized")

	// SamplingRateMismatch is returned when a write targets an existing
	// channel at a different sampling frequency than it was created with.
	SamplingRateMismatch = errors.New("mefd: sampling rate mismatch")

	// Closed is returned when an operation is attempted on a Reader or
	// Writer after Close has been called.
	Closed = errors.New("mefd: already closed")

	// InvalidKey is returned when a password exceeds the maximum character
	// length or an expanded key is the wrong size.
	InvalidKey = errors.New("mefd: invalid key")

	// TruncatedBlock is returned when a RED block's declared block_bytes
	// extends past the data actually available to decode.
	TruncatedBlock = errors.New("mefd: truncated block")

	// UnsupportedVersion is returned when a RED block's flags byte sets bits
	// this module does not recognize. A file whose MEF version major number
	// does not match is reported as InvalidFormat instead.
	UnsupportedVersion = errors.New("mefd: unsupported mef version")
)
