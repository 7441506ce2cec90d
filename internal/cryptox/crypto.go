// Package cryptox implements sealing of locally stored secrets. Values kept
// in the credential vault are encrypted with AES-GCM under a device key that
// is generated on first use and stretched with argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/ajudae/go-client/internal/shared"
)

const (
	saltSize   = 16
	secretSize = 32
	keySize    = 32
)

// ErrMalformedSealed is returned when a sealed blob is shorter than the
// nonce it must begin with.
var ErrMalformedSealed = errors.New("malformed sealed value")

// DeriveSealingKey stretches the raw device secret into an AES-256 key.
func DeriveSealingKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// LoadOrCreateKey returns the sealing key for the vault at path. On first
// use it generates a random salt and secret and writes them to path with
// mode 0600; afterwards the same file always yields the same key.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = append(shared.RandBytes(saltSize), shared.RandBytes(secretSize)...)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write device key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read device key: %w", err)
	}

	if len(data) != saltSize+secretSize {
		return nil, fmt.Errorf("device key file %s has unexpected size %d", path, len(data))
	}

	return DeriveSealingKey(data[saltSize:], data[:saltSize]), nil
}

// Seal encrypts plaintext with AES-GCM under key. A fresh random nonce is
// generated per call and prepended to the ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := shared.RandBytes(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal. Tampered or foreign ciphertext
// fails authentication and returns an error.
func Open(sealed, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < aesgcm.NonceSize() {
		return nil, ErrMalformedSealed
	}

	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
