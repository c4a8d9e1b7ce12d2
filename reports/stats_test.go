package reports

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/granth1406/HawkEye/models"
)

// now is a Wednesday so weekday bucketing is deterministic.
var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

func report(id, scanType, verdict string, createdAt time.Time) models.ScanReport {
	return models.ScanReport{
		ID:        id,
		UserID:    "u1",
		Type:      scanType,
		Target:    "target-" + id,
		Verdict:   verdict,
		CreatedAt: createdAt,
	}
}

func TestComputeUserStatsCounts(t *testing.T) {
	scans := []models.ScanReport{
		report("1", models.ScanTypeFile, models.VerdictSafe, testNow.Add(-3*time.Hour)),
		report("2", models.ScanTypeFile, models.VerdictMalicious, testNow.Add(-2*time.Hour)),
		report("3", models.ScanTypeURL, models.VerdictSuspicious, testNow.Add(-time.Hour)),
		report("4", models.ScanTypePassword, models.VerdictSafe, testNow.Add(-30*time.Minute)),
		report("5", models.ScanTypeEmail, models.VerdictUnknown, testNow.Add(-10*time.Minute)),
	}

	stats := ComputeUserStats(scans, testNow)

	if stats.FilesScanned != 2 || stats.URLsScanned != 1 || stats.PasswordsChecked != 1 {
		t.Errorf("counts = %d files, %d urls, %d passwords",
			stats.FilesScanned, stats.URLsScanned, stats.PasswordsChecked)
	}
	if stats.ThreatsDetected != 2 {
		t.Errorf("threatsDetected = %d, want 2", stats.ThreatsDetected)
	}
	if stats.CleanScans != 3 {
		t.Errorf("cleanScans = %d, want 3", stats.CleanScans)
	}
	if stats.TotalScans != 5 {
		t.Errorf("totalScans = %d, want 5", stats.TotalScans)
	}
}

func TestComputeUserStatsHistory(t *testing.T) {
	var scans []models.ScanReport
	for i := 0; i < 15; i++ {
		scans = append(scans, report(fmt.Sprintf("%d", i), models.ScanTypeFile,
			models.VerdictSafe, testNow.Add(time.Duration(i-20)*time.Minute)))
	}

	stats := ComputeUserStats(scans, testNow)

	if len(stats.History) != 10 {
		t.Fatalf("history length = %d, want 10", len(stats.History))
	}
	// Newest first.
	if stats.History[0].ID != "14" {
		t.Errorf("history[0].ID = %s, want 14", stats.History[0].ID)
	}
	if stats.History[0].Status != "Clean" {
		t.Errorf("history[0].Status = %s", stats.History[0].Status)
	}
	if stats.History[0].Type != "File" {
		t.Errorf("history[0].Type = %s", stats.History[0].Type)
	}
}

func TestComputeUserStatsTruncatesLongTargets(t *testing.T) {
	long := report("1", models.ScanTypeURL, models.VerdictSafe, testNow)
	long.Target = "https://example.com/" + strings.Repeat("a", 80)

	stats := ComputeUserStats([]models.ScanReport{long}, testNow)
	if got := stats.History[0].Name; len(got) != 53 {
		t.Errorf("truncated name length = %d (%q), want 53", len(got), got)
	}
}

func TestChartBucketsMondayFirst(t *testing.T) {
	// 2024-03-11 is a Monday, 2024-03-17 a Sunday.
	monday := time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, time.March, 17, 9, 0, 0, 0, time.UTC)

	scans := []models.ScanReport{
		report("1", models.ScanTypeFile, models.VerdictSafe, monday),
		report("2", models.ScanTypeURL, models.VerdictSafe, monday),
		report("3", models.ScanTypePassword, models.VerdictSafe, sunday),
	}

	stats := ComputeUserStats(scans, testNow)

	if len(stats.ChartData) != 7 {
		t.Fatalf("chart buckets = %d, want 7", len(stats.ChartData))
	}
	if stats.ChartData[0].Day != "Mon" || stats.ChartData[6].Day != "Sun" {
		t.Errorf("bucket order: first = %s, last = %s", stats.ChartData[0].Day, stats.ChartData[6].Day)
	}
	if stats.ChartData[0].Files != 1 || stats.ChartData[0].URLs != 1 {
		t.Errorf("monday bucket = %+v", stats.ChartData[0])
	}
	if stats.ChartData[6].Passwords != 1 {
		t.Errorf("sunday bucket = %+v", stats.ChartData[6])
	}
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(testNow.Add(-tt.age), testNow); got != tt.want {
			t.Errorf("TimeAgo(-%v) = %q, want %q", tt.age, got, tt.want)
		}
	}

	old := testNow.Add(-30 * 24 * time.Hour)
	if got := TimeAgo(old, testNow); got != old.Format("1/2/2006") {
		t.Errorf("TimeAgo(old) = %q", got)
	}
}
