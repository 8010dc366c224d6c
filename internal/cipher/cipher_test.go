package cipher

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSHA256Vectors(t *testing.T) {
	cases := map[string]string{
		"":                                              "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		"abc":                                            "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"The quick brown fox jumps over the lazy dog":    "d7a8fbb307d7809469ca9abcb0082e4f8d5651e46d3cdb762d02d0bf37c9e592",
	}

	for input, want := range cases {
		sum := sha256.Sum256([]byte(input))
		require.Equal(t, want, hex.EncodeToString(sum[:]), "SHA256(%q)", input)
	}
}

func TestEncryptDecryptBlock_RoundTrip(t *testing.T) {
	keys := [][]byte{
		mustKey(t, ""),
		mustKey(t, "short"),
		mustKey(t, "fifteen-chars-1"),
	}

	plaintext := []byte("0123456789abcdef")
	for _, key := range keys {
		ciphertext, err := EncryptBlock(key, plaintext)
		require.NoError(t, err)
		require.NotEqual(t, plaintext, ciphertext)

		decrypted, err := DecryptBlock(key, ciphertext)
		require.NoError(t, err)
		require.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptDecryptChunks_RoundTrip(t *testing.T) {
	key, err := DeriveKey("password")
	require.NoError(t, err)

	data := make([]byte, 3*BlockSize)
	for i := range data {
		data[i] = byte(i)
	}

	original := append([]byte{}, data...)
	require.NoError(t, EncryptChunks(key, data))
	require.NotEqual(t, original, data)

	require.NoError(t, DecryptChunks(key, data))
	require.Equal(t, original, data)
}

func TestDeriveKey_RejectsOverlongPassword(t *testing.T) {
	_, err := DeriveKey("this password is far too long to fit")
	require.Error(t, err)
}

func TestDeriveValidationField_Deterministic(t *testing.T) {
	var levelUUID [16]byte
	copy(levelUUID[:], "0123456789abcdef")

	a := DeriveValidationField("secret", levelUUID)
	b := DeriveValidationField("secret", levelUUID)
	require.Equal(t, a, b)

	c := DeriveValidationField("different", levelUUID)
	require.NotEqual(t, a, c)
}

func mustKey(t *testing.T, password string) []byte {
	t.Helper()
	key, err := DeriveKey(password)
	require.NoError(t, err)
	return key
}
