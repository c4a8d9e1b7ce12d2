package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/granth1406/HawkEye/models"
	"github.com/granth1406/HawkEye/safebrowsing"
	"github.com/granth1406/HawkEye/virustotal"
)

// fakeUpstreams runs a Safe Browsing and a VirusTotal stand-in and counts
// every request either receives.
type fakeUpstreams struct {
	requests int64

	sbMatch      bool
	vtMalicious  int
	vtSuspicious int
}

func (f *fakeUpstreams) start(t *testing.T) (*safebrowsing.Client, *virustotal.Client) {
	t.Helper()

	sbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.requests, 1)
		if f.sbMatch {
			fmt.Fprint(w, `{"matches":[{"threatType":"MALWARE","platformType":"ANY_PLATFORM","threatEntryType":"URL","threat":{"url":"http://bad.example"}}]}`)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(sbSrv.Close)

	vtSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.requests, 1)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/urls":
			fmt.Fprint(w, `{"data":{"id":"url-analysis-1"}}`)
		case strings.HasPrefix(r.URL.Path, "/analyses/"):
			fmt.Fprintf(w, `{"data":{"attributes":{"status":"completed","stats":{"malicious":%d,"suspicious":%d}}}}`,
				f.vtMalicious, f.vtSuspicious)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(vtSrv.Close)

	sb := safebrowsing.NewClient("sb-key")
	sb.BaseURL = sbSrv.URL
	sb.HTTPClient = sbSrv.Client()

	vt := virustotal.NewClient("vt-key")
	vt.BaseURL = vtSrv.URL
	vt.HTTPClient = vtSrv.Client()

	return sb, vt
}

func TestURLScanRejectsInvalidBeforeNetwork(t *testing.T) {
	fake := &fakeUpstreams{}
	sb, vt := fake.start(t)
	saver := &memSaver{}
	s := NewURLScanner(sb, vt, saver)

	for _, bad := range []string{"not a url", "", "example.com", "://missing-scheme"} {
		_, err := s.Scan(context.Background(), "u1", bad)
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Scan(%q) err = %v, want ErrInvalidURL", bad, err)
		}
	}

	if n := atomic.LoadInt64(&fake.requests); n != 0 {
		t.Errorf("outbound requests = %d, want 0 for invalid URLs", n)
	}
	if saver.count() != 0 {
		t.Errorf("reports = %d, want 0 for rejected input", saver.count())
	}
}

func TestURLScanSafeBrowsingMatchWins(t *testing.T) {
	// A Safe Browsing hit is malicious no matter what VirusTotal says.
	fake := &fakeUpstreams{sbMatch: true, vtMalicious: 0, vtSuspicious: 0}
	sb, vt := fake.start(t)
	saver := &memSaver{}
	s := NewURLScanner(sb, vt, saver)

	res, err := s.Scan(context.Background(), "u1", "http://bad.example/login")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if res.Report.Verdict != models.VerdictMalicious {
		t.Errorf("verdict = %s, want malicious", res.Report.Verdict)
	}
	if res.SafeBrowsing != "threat-found" {
		t.Errorf("safeBrowsing = %s, want threat-found", res.SafeBrowsing)
	}
	if res.VirusTotal != "clean" {
		t.Errorf("virusTotal = %s, want clean", res.VirusTotal)
	}
	if saver.count() != 1 {
		t.Errorf("reports = %d, want 1", saver.count())
	}
}

func TestURLScanVerdictCombination(t *testing.T) {
	tests := []struct {
		name        string
		fake        fakeUpstreams
		wantVerdict string
		wantVT      string
	}{
		{"clean everywhere", fakeUpstreams{}, models.VerdictSafe, "clean"},
		{"vt malicious", fakeUpstreams{vtMalicious: 4}, models.VerdictMalicious, "4 detections"},
		{"vt suspicious only", fakeUpstreams{vtSuspicious: 2}, models.VerdictSuspicious, "clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, vt := tt.fake.start(t)
			saver := &memSaver{}
			s := NewURLScanner(sb, vt, saver)

			res, err := s.Scan(context.Background(), "u1", "https://example.com")
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if res.Report.Verdict != tt.wantVerdict {
				t.Errorf("verdict = %s, want %s", res.Report.Verdict, tt.wantVerdict)
			}
			if res.VirusTotal != tt.wantVT {
				t.Errorf("virusTotal = %s, want %s", res.VirusTotal, tt.wantVT)
			}
			if res.Report.Type != models.ScanTypeURL || res.Report.Target != "https://example.com" {
				t.Errorf("report = %+v", res.Report)
			}
		})
	}
}
