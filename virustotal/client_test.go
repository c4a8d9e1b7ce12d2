package virustotal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	c.HTTPClient = srv.Client()
	return c
}

func TestLookupHashFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-apikey") != "test-key" {
			t.Error("missing x-apikey header")
		}
		if r.URL.Path != "/files/abc123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"attributes":{"last_analysis_stats":{"malicious":2,"suspicious":1,"undetected":60}}}}`)
	}))
	defer srv.Close()

	report, err := newTestClient(srv).LookupHash(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("LookupHash: %v", err)
	}
	if report == nil {
		t.Fatal("report = nil, want decoded report")
	}
	malicious, suspicious, ok := report.Stats()
	if !ok || malicious != 2 || suspicious != 1 {
		t.Errorf("Stats() = %d, %d, %v", malicious, suspicious, ok)
	}
}

func TestLookupHashNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	report, err := newTestClient(srv).LookupHash(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if report != nil {
		t.Errorf("report = %v, want nil for 404", report)
	}
}

func TestLookupHashServerErrorDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	report, err := newTestClient(srv).LookupHash(context.Background(), "deadbeef")
	if err != nil || report != nil {
		t.Errorf("got (%v, %v), want (nil, nil) on server error", report, err)
	}
}

func TestRateLimitPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).LookupHash(context.Background(), "deadbeef")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/files" {
			t.Errorf("%s %s, want POST /files", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		f.Close()
		if header.Filename != "sample.bin" {
			t.Errorf("filename = %s", header.Filename)
		}
		fmt.Fprint(w, `{"data":{"id":"analysis-1"}}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := newTestClient(srv).UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if got := report.AnalysisID(); got != "analysis-1" {
		t.Errorf("AnalysisID() = %q, want analysis-1", got)
	}
}

func TestGetAnalysisStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"attributes":{"status":"completed","stats":{"malicious":0,"suspicious":3}}}}`)
	}))
	defer srv.Close()

	report, err := newTestClient(srv).GetAnalysis(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if report.Status() != "completed" {
		t.Errorf("Status() = %q", report.Status())
	}
	// Analysis payloads carry counters under "stats", not
	// "last_analysis_stats"; Stats must read both.
	malicious, suspicious, ok := report.Stats()
	if !ok || malicious != 0 || suspicious != 3 {
		t.Errorf("Stats() = %d, %d, %v", malicious, suspicious, ok)
	}
}

func TestReportStatsMissing(t *testing.T) {
	var r Report = map[string]interface{}{"data": map[string]interface{}{"attributes": map[string]interface{}{}}}
	if _, _, ok := r.Stats(); ok {
		t.Error("Stats() ok = true for report without stats")
	}
}
