package security

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptString encrypts a plaintext credential with the configured key and
// returns base64(nonce || ciphertext).
func EncryptString(plaintext string) (string, error) {
	aead, err := newAEAD()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func DecryptString(encoded string) (string, error) {
	aead, err := newAEAD()
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode credential: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("credential too short: %d bytes", len(raw))
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}
	return string(plaintext), nil
}

func newAEAD() (cipher.AEAD, error) {
	config := GetConfig()
	key, err := base64.StdEncoding.DecodeString(config.BridgeCRKey)
	if err != nil {
		return nil, fmt.Errorf("invalid BRIDGE_CREDENTIALS_KEY: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("BRIDGE_CREDENTIALS_KEY must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return chacha20poly1305.New(key)
}
