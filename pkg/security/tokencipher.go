package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/osoriodev/tablebook-backend/pkg/config"
	"golang.org/x/crypto/chacha20poly1305"
)

// TokenCipher encrypts calendar tokens at rest with ChaCha20-Poly1305.
// Ciphertexts are base64(nonce || sealed) strings suitable for a text column.
type TokenCipher struct {
	key []byte
}

// NewTokenCipher builds a cipher from the configured base64 key. The decoded
// key must be exactly 32 bytes.
func NewTokenCipher(cfg config.SecurityConfig) (*TokenCipher, error) {
	if cfg.TokenCipherKey == "" {
		return nil, fmt.Errorf("token cipher key is required")
	}
	key, err := base64.StdEncoding.DecodeString(cfg.TokenCipherKey)
	if err != nil {
		return nil, fmt.Errorf("decode token cipher key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token cipher key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &TokenCipher{key: key}, nil
}

// Encrypt seals the plaintext token under a fresh random nonce.
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("plaintext token cannot be empty")
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt, failing on tampered or truncated input.
func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plaintext), nil
}
