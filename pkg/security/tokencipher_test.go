package security

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/osoriodev/tablebook-backend/pkg/config"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestTokenCipherRoundTrip(t *testing.T) {
	cipher, err := NewTokenCipher(config.SecurityConfig{TokenCipherKey: testKey()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token := "ya29.a0AfH6SMBx"
	encrypted, err := cipher.Encrypt(token)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(encrypted, token) {
		t.Fatal("ciphertext leaks plaintext")
	}

	decrypted, err := cipher.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if decrypted != token {
		t.Fatalf("round trip mismatch: %q", decrypted)
	}
}

func TestTokenCipherNoncesDiffer(t *testing.T) {
	cipher, err := NewTokenCipher(config.SecurityConfig{TokenCipherKey: testKey()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := cipher.Encrypt("token")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := cipher.Encrypt("token")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct ciphertexts for the same plaintext")
	}
}

func TestTokenCipherRejectsTamperedCiphertext(t *testing.T) {
	cipher, err := NewTokenCipher(config.SecurityConfig{TokenCipherKey: testKey()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	encrypted, err := cipher.Encrypt("token")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(encrypted)
	raw[len(raw)-1] ^= 0xff
	if _, err := cipher.Decrypt(base64.StdEncoding.EncodeToString(raw)); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
}

func TestNewTokenCipherRejectsBadKeys(t *testing.T) {
	if _, err := NewTokenCipher(config.SecurityConfig{}); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := NewTokenCipher(config.SecurityConfig{TokenCipherKey: "not base64!!"}); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	if _, err := NewTokenCipher(config.SecurityConfig{TokenCipherKey: short}); err == nil {
		t.Fatal("expected error for short key")
	}
}
