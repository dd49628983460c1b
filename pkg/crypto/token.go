package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// OAuth tokens are stored as base64(nonce || secretbox ciphertext) sealed with a
// 32-byte symmetric key supplied as 64 hex characters.

const nonceSize = 24

var ErrDecryptFailed = errors.New("token decryption failed")

func parseKey(hexKey string) (*[32]byte, error) {
	if len(hexKey) != 64 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// EncryptToken seals plaintext with a fresh random nonce.
func EncryptToken(plaintext, hexKey string) (string, error) {
	key, err := parseKey(hexKey)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptToken opens a payload produced by EncryptToken.
func DecryptToken(ciphertext, hexKey string) (string, error) {
	key, err := parseKey(hexKey)
	if err != nil {
		return "", err
	}

	combined, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	if len(combined) < nonceSize+secretbox.Overhead {
		return "", ErrDecryptFailed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], combined[:nonceSize])

	plain, ok := secretbox.Open(nil, combined[nonceSize:], &nonce, key)
	if !ok {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}

// GenerateKey returns a new random key as 64 hex characters.
func GenerateKey() (string, error) {
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(key[:]), nil
}
