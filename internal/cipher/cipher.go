// Package cipher implements the AES-128 block encryption and SHA-256-based
// password validation MEF 3.0 uses to protect RED block payloads and to
// verify a reader's password against a Universal Header.
//
// MEF 3.0 encrypts fixed 16-byte chunks independently with no chaining, so
// this package exposes crypto/aes's raw single-block Encrypt/Decrypt
// primitive directly rather than wrapping it in a cipher.BlockMode — there
// is no IV and no mode here, by format design, not by omission.
package cipher

import (
	"crypto/aes"
	"crypto/sha256"
	"fmt"

	"github.com/brainmaze/mefd/errs"
)

// BlockSize is the AES-128 block size in bytes, and the quantum MEF 3.0
// encrypts RED payload chunks in.
const BlockSize = 16

// KeySize is the raw AES-128 key size in bytes.
const KeySize = 16

// MaxPasswordCharacters is the longest password DeriveKey accepts before the
// zero-pad no longer fits a single key block.
const MaxPasswordCharacters = KeySize - 1

// DeriveKey zero-pads password to a 16-byte AES-128 key. MEF 3.0 passwords
// are at most 15 UTF-8 bytes so the pad always leaves room for at least one
// trailing zero (mirroring MAX_PASSWORD_CHARACTERS in the reference
// implementation).
func DeriveKey(password string) ([]byte, error) {
	b := []byte(password)
	if len(b) > MaxPasswordCharacters {
		return nil, fmt.Errorf("cipher: password exceeds %d characters: %w", MaxPasswordCharacters, errs.InvalidKey)
	}
	key := make([]byte, KeySize)
	copy(key, b)
	return key, nil
}

// EncryptBlock encrypts exactly one 16-byte block under key.
func EncryptBlock(key, plaintext []byte) ([]byte, error) {
	if len(plaintext) != BlockSize {
		return nil, fmt.Errorf("cipher: plaintext must be %d bytes, got %d: %w", BlockSize, len(plaintext), errs.InvalidKey)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w: %w", errs.InvalidKey, err)
	}
	out := make([]byte, BlockSize)
	block.Encrypt(out, plaintext)
	return out, nil
}

// DecryptBlock decrypts exactly one 16-byte block under key.
func DecryptBlock(key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != BlockSize {
		return nil, fmt.Errorf("cipher: ciphertext must be %d bytes, got %d: %w", BlockSize, len(ciphertext), errs.InvalidKey)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w: %w", errs.InvalidKey, err)
	}
	out := make([]byte, BlockSize)
	block.Decrypt(out, ciphertext)
	return out, nil
}

// EncryptChunks AES-encrypts data in place, 16 bytes at a time. data's
// length must be a multiple of BlockSize; callers pad to a 16-byte boundary
// before calling (the RED encoder does this whenever encryption is
// requested, rather than the usual 8-byte RED pad).
func EncryptChunks(key, data []byte) error {
	if len(data)%BlockSize != 0 {
		return fmt.Errorf("cipher: data length %d not a multiple of %d: %w", len(data), BlockSize, errs.InvalidFormat)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("cipher: %w: %w", errs.InvalidKey, err)
	}
	buf := make([]byte, BlockSize)
	for off := 0; off < len(data); off += BlockSize {
		chunk := data[off : off+BlockSize]
		block.Encrypt(buf, chunk)
		copy(chunk, buf)
	}
	return nil
}

// DecryptChunks is the inverse of EncryptChunks.
func DecryptChunks(key, data []byte) error {
	if len(data)%BlockSize != 0 {
		return fmt.Errorf("cipher: data length %d not a multiple of %d: %w", len(data), BlockSize, errs.InvalidFormat)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("cipher: %w: %w", errs.InvalidKey, err)
	}
	buf := make([]byte, BlockSize)
	for off := 0; off < len(data); off += BlockSize {
		chunk := data[off : off+BlockSize]
		block.Decrypt(buf, chunk)
		copy(chunk, buf)
	}
	return nil
}

// ValidationFieldSize is the stored size of a password validation field in
// a Universal Header.
const ValidationFieldSize = 16

// DeriveValidationField computes the password validation field stored in a
// Universal Header for the given access level: the first 16 bytes of
// SHA256(SHA256(password) || levelUUID). A reader presenting a candidate
// password recomputes this and compares it to the stored field before
// trusting that access level — this derivation is this module's resolution
// of the password-validation conformance question the format leaves open;
// it is internally consistent (round-trips against itself) but is not
// guaranteed byte-compatible with other MEF 3.0 implementations' choice of
// derivation.
func DeriveValidationField(password string, levelUUID [16]byte) [ValidationFieldSize]byte {
	inner := sha256.Sum256([]byte(password))
	h := sha256.New()
	h.Write(inner[:])
	h.Write(levelUUID[:])
	outer := h.Sum(nil)
	var field [ValidationFieldSize]byte
	copy(field[:], outer[:ValidationFieldSize])
	return field
}
