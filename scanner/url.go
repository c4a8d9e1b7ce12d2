package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/safebrowsing"
	"github.com/granth1406/HawkEye/virustotal"
)

// ErrInvalidURL rejects input before any outbound call is made.
var ErrInvalidURL = errors.New("invalid URL")

type URLScanner struct {
	SB      *safebrowsing.Client
	VT      *virustotal.Client
	Reports ReportSaver
}

func NewURLScanner(sb *safebrowsing.Client, vt *virustotal.Client, reports ReportSaver) *URLScanner {
	return &URLScanner{SB: sb, VT: vt, Reports: reports}
}

// URLResult is the combined outcome of a URL scan.
type URLResult struct {
	Report       *models.ScanReport
	SafeBrowsing string // "clean" or "threat-found"
	VirusTotal   string // "clean" or "<n> detections"
}

// Scan checks a URL against Safe Browsing and VirusTotal. A Safe Browsing
// match is malicious regardless of what VirusTotal says; otherwise
// VirusTotal's suspicious count decides between suspicious and safe. The
// VirusTotal side submits and immediately fetches the analysis; the URL
// endpoint resolves fast enough that no poll loop is needed.
func (s *URLScanner) Scan(ctx context.Context, userID, rawURL string) (*URLResult, error) {
	if !validURL(rawURL) {
		return nil, ErrInvalidURL
	}

	sbMatched, sbMatches, err := s.SB.CheckURL(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("safe browsing check: %w", err)
	}

	var (
		vtAnalysis virustotal.Report
		malicious  int
		suspicious int
	)
	submission, err := s.VT.SubmitURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if submission != nil {
		if id := submission.AnalysisID(); id != "" {
			vtAnalysis, err = s.VT.GetAnalysis(ctx, id)
			if err != nil {
				return nil, err
			}
		}
	}
	if vtAnalysis != nil {
		malicious, suspicious, _ = vtAnalysis.Stats()
	}

	verdict := models.VerdictSafe
	switch {
	case sbMatched || malicious > 0:
		verdict = models.VerdictMalicious
	case suspicious > 0:
		verdict = models.VerdictSuspicious
	}

	report := &models.ScanReport{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   models.ScanTypeURL,
		Target: rawURL,
		Result: map[string]interface{}{
			"safeBrowsing": sbMatches,
			"virusTotal":   vtAnalysis,
		},
		Verdict:   verdict,
		CreatedAt: time.Now(),
	}
	if err := s.Reports.Save(ctx, report); err != nil {
		log.Printf("[SCAN] failed to save url report %s: %v", report.ID, err)
	}

	res := &URLResult{
		Report:       report,
		SafeBrowsing: "clean",
		VirusTotal:   "clean",
	}
	if sbMatched {
		res.SafeBrowsing = "threat-found"
	}
	if malicious > 0 {
		res.VirusTotal = fmt.Sprintf("%d detections", malicious)
	}
	return res, nil
}

// validURL accepts what a standard URL constructor would: an absolute URL
// with a scheme and host.
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
