// Package shared provides small helpers used across the client:
// random byte generation and secure wiping of sensitive buffers.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// RandBytes returns size cryptographically random bytes. It panics only if
// the system random source is broken, which is not a recoverable condition
// for a credential-handling client.
func RandBytes(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since every byte
// encodes to two hex characters.
func RandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to remove passwords and keys from memory after use.
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
