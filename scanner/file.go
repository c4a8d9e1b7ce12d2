// Package scanner holds the scan orchestration: the file-scan state
// machine around VirusTotal's asynchronous analysis engine, and the
// synchronous URL scan combining Safe Browsing with VirusTotal.
package scanner

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/utils"
	"github.com/granth1406/HawkEye/virustotal"
)

// ReportSaver persists terminal scan reports. The Mongo-backed store in
// the reports package implements it; tests use an in-memory saver.
type ReportSaver interface {
	Save(ctx context.Context, report *models.ScanReport) error
}

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 36
)

type FileScanner struct {
	VT      *virustotal.Client
	Reports ReportSaver

	// PollInterval and MaxPolls bound the wait for a fresh analysis:
	// 36 polls at 5s is roughly three minutes before giving up with an
	// unknown verdict.
	PollInterval time.Duration
	MaxPolls     int

	// KeepFile leaves the scanned file on disk. Request uploads are
	// temporary and always removed; the bulk CLI scans files it does not
	// own and sets this.
	KeepFile bool
}

func NewFileScanner(vt *virustotal.Client, reports ReportSaver) *FileScanner {
	return &FileScanner{
		VT:           vt,
		Reports:      reports,
		PollInterval: defaultPollInterval,
		MaxPolls:     defaultMaxPolls,
	}
}

// Scan runs one uploaded file to a terminal verdict: hash it, try the
// VirusTotal cache, otherwise submit and poll. Exactly one ScanReport is
// written per call, whatever the outcome, and the temporary upload is
// removed on every exit path.
func (s *FileScanner) Scan(ctx context.Context, userID, path, originalName string) (*models.ScanReport, error) {
	if !s.KeepFile {
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("[SCAN] failed to remove upload %s: %v", path, err)
			}
		}()
	}

	log.Printf("[SCAN] starting file scan: %s", originalName)

	hash, err := utils.FileSHA256(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[SCAN] file hash (SHA-256): %s", hash)

	result, err := s.VT.LookupHash(ctx, hash)
	if err != nil {
		// Rate limit or timeout: surface it instead of burning the poll
		// budget against a throttled API.
		return nil, err
	}

	if result != nil {
		log.Printf("[SCAN] hash found in VirusTotal cache")
	} else {
		log.Printf("[SCAN] hash not in cache, uploading file")
		upload, err := s.VT.UploadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		if upload == nil {
			// Submission failed outright. Without a valid analysis id there
			// is nothing to poll; record the attempt as unknown.
			log.Printf("[SCAN] upload failed, recording unknown verdict")
		} else if id := upload.AnalysisID(); id != "" {
			log.Printf("[SCAN] uploaded, analysis id %s", id)
			result, err = s.poll(ctx, id)
			if err != nil {
				return nil, err
			}
			if result == nil {
				log.Printf("[SCAN] analysis polling timed out")
			}
		} else {
			result = upload
		}
	}

	verdict := VerdictFromReport(result)
	log.Printf("[SCAN] verdict: %s", verdict)

	report := &models.ScanReport{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.ScanTypeFile,
		Target:    originalName,
		Hash:      hash,
		Result:    result,
		Verdict:   verdict,
		CreatedAt: time.Now(),
	}
	s.save(ctx, report)
	return report, nil
}

// poll fetches the analysis until it completes, the retry budget runs out
// (nil result), or a call fails outright. A nil analysis from a single
// poll aborts immediately: "broken" is not "still queued", and waiting out
// the full budget on a dead request helps nobody.
func (s *FileScanner) poll(ctx context.Context, analysisID string) (virustotal.Report, error) {
	for i := 0; i < s.MaxPolls; i++ {
		analysis, err := s.VT.GetAnalysis(ctx, analysisID)
		if err != nil {
			return nil, err
		}
		if analysis == nil {
			return nil, nil
		}
		if analysis.Status() == "completed" {
			return analysis, nil
		}
		select {
		case <-time.After(s.PollInterval):
		case <-ctx.Done():
			return nil, nil
		}
	}
	return nil, nil
}

// save is best-effort: a history write failing after a completed scan is
// logged and swallowed so the caller still gets the verdict.
func (s *FileScanner) save(ctx context.Context, report *models.ScanReport) {
	if err := s.Reports.Save(ctx, report); err != nil {
		log.Printf("[SCAN] failed to save report %s: %v", report.ID, err)
	}
}
