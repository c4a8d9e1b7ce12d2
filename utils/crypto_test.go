package utils

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	const passphrase = "test-encryption-key"
	const secret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

	encrypted, err := Encrypt(passphrase, secret)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if strings.Contains(encrypted, secret) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := Decrypt(passphrase, encrypted)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != secret {
		t.Errorf("round trip = %q, want %q", decrypted, secret)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	encrypted, err := Encrypt("key", "data")
	if err != nil {
		t.Fatal(err)
	}

	tampered := encrypted[:len(encrypted)-2] + "00"
	if tampered == encrypted {
		tampered = encrypted[:len(encrypted)-2] + "11"
	}
	if _, err := Decrypt("key", tampered); err == nil {
		t.Error("expected error for tampered ciphertext")
	}

	if _, err := Decrypt("wrong-key", encrypted); err == nil {
		t.Error("expected error for wrong passphrase")
	}

	if _, err := Decrypt("key", "not-a-ciphertext"); err == nil {
		t.Error("expected error for malformed input")
	}
}
