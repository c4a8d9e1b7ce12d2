package models

import "time"

// Auth providers.
const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

type User struct {
	ID           string `bson:"_id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"passwordHash,omitempty" json:"-"`
	GoogleID     string `bson:"googleId,omitempty" json:"-"`
	AuthProvider string `bson:"authProvider" json:"authProvider"`

	TwoFactorEnabled     bool     `bson:"twoFactorEnabled" json:"twoFactorEnabled"`
	TwoFactorSecret      string   `bson:"twoFactorSecret,omitempty" json:"-"`
	TwoFactorBackupCodes []string `bson:"twoFactorBackupCodes,omitempty" json:"-"`
	TwoFactorVerified    bool     `bson:"twoFactorVerified" json:"twoFactorVerified"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
