package models

import "time"

// Scan types.
const (
	ScanTypeFile     = "file"
	ScanTypeURL      = "url"
	ScanTypePassword = "password"
	ScanTypeEmail    = "email"
)

// Verdicts. A verdict is always derived from the scan result, never
// accepted from the client.
const (
	VerdictSafe       = "safe"
	VerdictSuspicious = "suspicious"
	VerdictMalicious  = "malicious"
	VerdictUnknown    = "unknown"
)

// ScanReport is one completed or attempted scan. Reports are written once
// when a scan reaches a terminal state and never updated.
type ScanReport struct {
	ID        string      `bson:"_id" json:"id"`
	UserID    string      `bson:"userId,omitempty" json:"userId,omitempty"`
	Type      string      `bson:"type" json:"type"`
	Target    string      `bson:"target" json:"target"`
	Hash      string      `bson:"hash,omitempty" json:"hash,omitempty"`
	Result    interface{} `bson:"result,omitempty" json:"result,omitempty"`
	Verdict   string      `bson:"verdict" json:"verdict"`
	CreatedAt time.Time   `bson:"createdAt" json:"createdAt"`
}
