package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// deriveKey pads or truncates the configured passphrase to the 32 bytes
// AES-256 requires.
func deriveKey(passphrase string) []byte {
	key := make([]byte, 32)
	copy(key, passphrase)
	for i := len(passphrase); i < 32; i++ {
		key[i] = '0'
	}
	return key
}

// Encrypt seals data with AES-256-GCM under the given passphrase and
// returns "nonceHex:cipherHex". Used for TOTP secrets and backup codes at
// rest.
func Encrypt(passphrase, data string) (string, error) {
	block, err := aes.NewCipher(deriveKey(passphrase))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, nonce, []byte(data), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

func Decrypt(passphrase, encrypted string) (string, error) {
	nonceHex, cipherHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", fmt.Errorf("malformed ciphertext")
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return "", fmt.Errorf("malformed nonce: %w", err)
	}
	sealed, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("malformed nonce")
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
