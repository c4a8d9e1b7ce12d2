package reports

import (
	"fmt"
	"time"

	"github.com/granth1406/HawkEye/models"
)

// UserStats is the dashboard payload: per-type counts, threat totals, the
// last ten scans and Mon–Sun chart buckets.
type UserStats struct {
	FilesScanned     int            `json:"filesScanned"`
	URLsScanned      int            `json:"urlsScanned"`
	PasswordsChecked int            `json:"passwordsChecked"`
	ThreatsDetected  int            `json:"threatsDetected"`
	CleanScans       int            `json:"cleanScans"`
	TotalScans       int            `json:"totalScans"`
	History          []HistoryEntry `json:"history"`
	ChartData        []ChartBucket  `json:"chartData"`
}

type HistoryEntry struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Threats int    `json:"threats"`
	Time    string `json:"time"`
}

type ChartBucket struct {
	Day       string `json:"day"`
	Files     int    `json:"files"`
	URLs      int    `json:"urls"`
	Passwords int    `json:"passwords"`
}

// ComputeUserStats aggregates a user's reports. Scans are expected in
// ascending creation order; the computation is in-process since a single
// user's history stays small.
func ComputeUserStats(scans []models.ScanReport, now time.Time) UserStats {
	stats := UserStats{TotalScans: len(scans)}

	for _, s := range scans {
		switch s.Type {
		case models.ScanTypeFile:
			stats.FilesScanned++
		case models.ScanTypeURL:
			stats.URLsScanned++
		case models.ScanTypePassword:
			stats.PasswordsChecked++
		}
		switch s.Verdict {
		case models.VerdictMalicious, models.VerdictSuspicious:
			stats.ThreatsDetected++
		default:
			stats.CleanScans++
		}
	}

	stats.History = historyEntries(scans, now, 10)
	stats.ChartData = chartBuckets(scans)
	return stats
}

func historyEntries(scans []models.ScanReport, now time.Time, limit int) []HistoryEntry {
	entries := make([]HistoryEntry, 0, limit)
	for i := len(scans) - 1; i >= 0 && len(entries) < limit; i-- {
		s := scans[i]

		name := s.Target
		if len(name) > 50 {
			name = name[:50] + "..."
		}

		var status string
		var threats int
		switch s.Verdict {
		case models.VerdictSafe:
			status = "Clean"
		case models.VerdictMalicious:
			status = "Malicious"
			threats = 3
		case models.VerdictSuspicious:
			status = "Suspicious"
			threats = 1
		default:
			status = "Safe"
		}

		entries = append(entries, HistoryEntry{
			ID:      s.ID,
			Type:    displayType(s.Type),
			Name:    name,
			Status:  status,
			Threats: threats,
			Time:    TimeAgo(s.CreatedAt, now),
		})
	}
	return entries
}

func displayType(scanType string) string {
	switch scanType {
	case models.ScanTypeFile:
		return "File"
	case models.ScanTypeURL:
		return "URL"
	case models.ScanTypeEmail:
		return "Email"
	}
	return "Password"
}

// chartBuckets groups scans into Monday-first weekday buckets.
func chartBuckets(scans []models.ScanReport) []ChartBucket {
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	buckets := make([]ChartBucket, len(days))
	for i, d := range days {
		buckets[i] = ChartBucket{Day: d}
	}

	for _, s := range scans {
		// time.Weekday has Sunday == 0; shift so Monday is index 0.
		idx := (int(s.CreatedAt.Weekday()) + 6) % 7
		switch s.Type {
		case models.ScanTypeFile:
			buckets[idx].Files++
		case models.ScanTypeURL:
			buckets[idx].URLs++
		case models.ScanTypePassword:
			buckets[idx].Passwords++
		}
	}
	return buckets
}

// TimeAgo renders a relative timestamp label for history rows.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("1/2/2006")
}
