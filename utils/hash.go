package utils

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// SHA256 streams r through a SHA-256 digest and returns the lowercase hex
// encoding. The reader is never buffered whole, so arbitrarily large
// uploads hash in constant memory.
func SHA256(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return SHA256(f)
}

// SHA1PrefixSuffix hashes s with SHA-1 and splits the uppercase hex digest
// into the 5-character prefix sent to the Pwned Passwords range endpoint
// and the 35-character suffix matched locally. Only the prefix ever leaves
// the process.
func SHA1PrefixSuffix(s string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(s))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest[:5], digest[5:]
}
