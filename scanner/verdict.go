package scanner

import (
	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/virustotal"
)

// VerdictFromReport derives a verdict from a VirusTotal report. It is a
// pure function of the report's detection stats: any malicious detections
// win, then suspicious, then safe. Missing stats (nil report, pending
// analysis, malformed payload) mean we simply don't know.
func VerdictFromReport(r virustotal.Report) string {
	if r == nil {
		return models.VerdictUnknown
	}
	malicious, suspicious, ok := r.Stats()
	if !ok {
		return models.VerdictUnknown
	}
	switch {
	case malicious > 0:
		return models.VerdictMalicious
	case suspicious > 0:
		return models.VerdictSuspicious
	}
	return models.VerdictSafe
}

// SeverityForBreachCount buckets a password breach count the way the
// dashboard presents it.
func SeverityForBreachCount(count int) string {
	switch {
	case count == 0:
		return "low"
	case count < 10:
		return "medium"
	case count < 100:
		return "high"
	}
	return "critical"
}
