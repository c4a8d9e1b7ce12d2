package config

import (
	"log"
	"os"
)

type Config struct {
	Port      string
	MongoURI  string
	JWTSecret string

	VTAPIKey       string
	GoogleAPIKey   string
	GoogleClientID string
	HIBPAPIKey     string

	EncryptionKey string
	UploadDir     string
}

// Load reads configuration from the environment. Keys that gate whole
// features are checked by ValidateForServe, not here, so the bulk-scan CLI
// can run without a full server environment.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "5000"),
		MongoURI:       os.Getenv("MONGO_URI"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		VTAPIKey:       os.Getenv("VT_API_KEY"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		HIBPAPIKey:     os.Getenv("HIBP_API_KEY"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
	}
}

// ValidateForServe fails fast on configuration the server cannot run
// without. Missing upstream keys make the affected feature unusable, so
// they are fatal at startup rather than at first request.
func (c *Config) ValidateForServe() {
	if c.MongoURI == "" {
		log.Fatal("FATAL: MONGO_URI is not set")
	}
	if c.JWTSecret == "" {
		log.Fatal("FATAL: JWT_SECRET is not set")
	}
	if c.VTAPIKey == "" {
		log.Fatal("FATAL: VT_API_KEY is not set; file and URL scanning cannot work")
	}
	if c.GoogleAPIKey == "" {
		log.Fatal("FATAL: GOOGLE_API_KEY is not set; Safe Browsing lookups cannot work")
	}
	if c.EncryptionKey == "" {
		log.Println("WARNING: ENCRYPTION_KEY is not set; using an insecure default")
		c.EncryptionKey = "default-encryption-key-change-me"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
