// Package twofactor implements TOTP two-factor auth: secret generation
// with a QR code for authenticator apps, token verification, and one-time
// backup codes.
package twofactor

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const issuer = "HawkEye Security"

// Setup is the material handed to the user during 2FA enrollment.
type Setup struct {
	Secret      string
	QRCode      string // data URL with a PNG of the otpauth QR code
	BackupCodes []string
}

// GenerateSetup creates a fresh TOTP secret for the account plus its QR
// code and backup codes. Nothing is persisted here; the secret stays
// pending until the user proves they enrolled it.
func GenerateSetup(email string) (*Setup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: fmt.Sprintf("HawkEye (%s)", email),
		SecretSize:  32,
	})
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	return &Setup{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		BackupCodes: GenerateBackupCodes(),
	}, nil
}

// VerifyToken checks a 6-digit TOTP code against the secret, allowing one
// period of clock skew either side.
func VerifyToken(secret, token string) bool {
	ok, err := totp.ValidateCustom(token, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// GenerateBackupCodes returns ten 8-hex-character one-time codes.
func GenerateBackupCodes() []string {
	codes := make([]string, 10)
	for i := range codes {
		buf := make([]byte, 4)
		rand.Read(buf)
		codes[i] = strings.ToUpper(hex.EncodeToString(buf))
	}
	return codes
}

// ConsumeBackupCode removes code from codes if present. It returns the
// remaining codes and whether the code was valid.
func ConsumeBackupCode(codes []string, code string) ([]string, bool) {
	for i, c := range codes {
		if c == code {
			return append(codes[:i:i], codes[i+1:]...), true
		}
	}
	return codes, false
}
