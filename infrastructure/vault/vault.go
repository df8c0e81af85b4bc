package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// TokenVault seals and unseals provider OAuth tokens with AES-256-GCM.
// Sealed values are base64(nonce || ciphertext). An unseal failure must be
// treated by callers as fatal for the item holding the token; it never
// yields garbage credentials.
type TokenVault struct {
	aead cipher.AEAD
}

var ErrUnsealFailed = errors.New("vault: unseal failed")

// NewTokenVault builds a vault from a hex-encoded 32-byte key.
func NewTokenVault(hexKey string) (*TokenVault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("vault: invalid key encoding: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("vault: key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &TokenVault{aead: aead}, nil
}

// Seal encrypts a plaintext token into an opaque string.
func (v *TokenVault) Seal(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Unseal decrypts a sealed token. Any corruption or key mismatch returns
// ErrUnsealFailed.
func (v *TokenVault) Unseal(opaque string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(opaque)
	if err != nil {
		return "", ErrUnsealFailed
	}
	ns := v.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrUnsealFailed
	}
	plaintext, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}
