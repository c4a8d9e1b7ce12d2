// Package virustotal wraps the VirusTotal v3 API: cached report lookup by
// content hash, file and URL submission, and analysis polling.
//
// Network and API failures (404 included) degrade to a nil report rather
// than an error, matching how the orchestrator treats "never seen" and
// "broken" identically at the call site. Rate limiting and timeouts are
// the exceptions: those surface as distinct errors so callers can answer
// with something better than "unknown".
package virustotal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.virustotal.com/api/v3"

var (
	ErrRateLimited = errors.New("virustotal: rate limited, retry later")
	ErrTimeout     = errors.New("virustotal: request timed out")
)

// Report is a decoded VirusTotal JSON document. The schema is owned by the
// API; we only walk the few paths we need and store the rest opaquely.
type Report map[string]interface{}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// LookupHash fetches the cached analysis report for a content digest.
// A nil report means VirusTotal has never seen this content (or the call
// failed), which is a normal outcome, not a fault.
func (c *Client) LookupHash(ctx context.Context, hash string) (Report, error) {
	return c.do(ctx, http.MethodGet, "/files/"+hash, nil, "")
}

// UploadFile submits file bytes for analysis. The analysis identifier is
// at data.id of the returned report.
func (c *Client) UploadFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return c.do(ctx, http.MethodPost, "/files", &buf, w.FormDataContentType())
}

// SubmitURL registers a URL for analysis.
func (c *Client) SubmitURL(ctx context.Context, target string) (Report, error) {
	form := url.Values{"url": {target}}
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, "/urls", body, "application/x-www-form-urlencoded")
}

// GetAnalysis fetches the current state of an analysis. The status at
// data.attributes.status is one of "queued", "in-progress" or "completed";
// only "completed" carries usable stats.
func (c *Client) GetAnalysis(ctx context.Context, analysisID string) (Report, error) {
	return c.do(ctx, http.MethodGet, "/analyses/"+analysisID, nil, "")
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (Report, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("x-apikey", c.APIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Printf("[VirusTotal] timeout on %s", endpoint)
			return nil, ErrTimeout
		}
		log.Printf("[VirusTotal] network error on %s: %v", endpoint, err)
		return nil, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		log.Printf("[VirusTotal] status %d on %s", resp.StatusCode, endpoint)
		return nil, nil
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		log.Printf("[VirusTotal] bad response body on %s: %v", endpoint, err)
		return nil, nil
	}
	return report, nil
}

// AnalysisID extracts data.id from a submission response, empty if absent.
func (r Report) AnalysisID() string {
	id, _ := r.path("data", "id").(string)
	return id
}

// Status extracts data.attributes.status from an analysis report.
func (r Report) Status() string {
	s, _ := r.path("data", "attributes", "status").(string)
	return s
}

// Stats returns the detection counters. File reports carry them at
// data.attributes.last_analysis_stats, analysis reports at
// data.attributes.stats; both are checked, in that order. ok is false when
// neither exists.
func (r Report) Stats() (malicious, suspicious int, ok bool) {
	stats, found := r.path("data", "attributes", "last_analysis_stats").(map[string]interface{})
	if !found {
		stats, found = r.path("data", "attributes", "stats").(map[string]interface{})
	}
	if !found {
		return 0, 0, false
	}
	m, _ := stats["malicious"].(float64)
	s, _ := stats["suspicious"].(float64)
	return int(m), int(s), true
}

func (r Report) path(keys ...string) interface{} {
	var cur interface{} = map[string]interface{}(r)
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
