package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecryptToken(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	enc, err := EncryptToken("ya29.secret-access-token", key)
	if err != nil {
		t.Fatalf("EncryptToken: %v", err)
	}
	if enc == "ya29.secret-access-token" {
		t.Fatal("ciphertext equals plaintext")
	}

	dec, err := DecryptToken(enc, key)
	if err != nil {
		t.Fatalf("DecryptToken: %v", err)
	}
	if dec != "ya29.secret-access-token" {
		t.Fatalf("roundtrip mismatch: got %q", dec)
	}
}

func TestDecryptTokenWrongKey(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()

	enc, err := EncryptToken("refresh-token", key1)
	if err != nil {
		t.Fatalf("EncryptToken: %v", err)
	}

	if _, err := DecryptToken(enc, key2); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestKeyValidation(t *testing.T) {
	if _, err := EncryptToken("x", "deadbeef"); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := EncryptToken("x", strings.Repeat("zz", 32)); err == nil {
		t.Fatal("expected error for non-hex key")
	}
}
