package hibp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/granth1406/HawkEye/utils"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-key")
	c.PasswordBaseURL = srv.URL
	c.AccountBaseURL = srv.URL
	c.HTTPClient = srv.Client()
	return c
}

func TestCheckPasswordFound(t *testing.T) {
	prefix, suffix := utils.SHA1PrefixSuffix("password")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/range/" + prefix; r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		// Ensure only the 5-char prefix was sent.
		if len(r.URL.Path) != len("/range/")+5 {
			t.Errorf("prefix longer than 5 characters: %s", r.URL.Path)
		}
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\r\n%s:3861493\r\nFFFFF0000000000000000000000000000AA:12", suffix)
	}))
	defer srv.Close()

	count, err := newTestClient(srv).CheckPassword(context.Background(), "password")
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if count != 3861493 {
		t.Errorf("count = %d, want 3861493", count)
	}
}

func TestCheckPasswordNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\r\n00D4F6E8FA6EECAD2A3AA415EEC418D38EC:2")
	}))
	defer srv.Close()

	count, err := newTestClient(srv).CheckPassword(context.Background(), "correct horse battery staple")
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for absent suffix", count)
	}
}

func TestCheckPasswordUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, "", ErrUnavailable},
		{"html error page", http.StatusOK, "<!DOCTYPE html><html>oops</html>", ErrUpstream},
		{"unexpected status", http.StatusBadRequest, "", ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).CheckPassword(context.Background(), "x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckPasswordTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.HTTPClient = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := c.CheckPassword(context.Background(), "x")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestCheckAccountNotBreached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	breaches, err := newTestClient(srv).CheckAccount(context.Background(), "clean@example.com")
	if err != nil {
		t.Fatalf("CheckAccount: %v", err)
	}
	if len(breaches) != 0 {
		t.Errorf("breaches = %v, want empty for 404", breaches)
	}
}

func TestCheckAccountBreached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("hibp-api-key") != "test-key" {
			t.Errorf("missing hibp-api-key header")
		}
		fmt.Fprint(w, `[
			{"Name":"Adobe","Title":"Adobe","BreachDate":"2013-10-04","Description":"..."},
			{"Name":"LinkedIn","Title":"LinkedIn","BreachDate":"2012-05-05","Description":"..."}
		]`)
	}))
	defer srv.Close()

	breaches, err := newTestClient(srv).CheckAccount(context.Background(), "pwned@example.com")
	if err != nil {
		t.Fatalf("CheckAccount: %v", err)
	}
	if len(breaches) != 2 {
		t.Fatalf("len(breaches) = %d, want 2", len(breaches))
	}
	if breaches[0].Name != "Adobe" || breaches[0].BreachDate != "2013-10-04" {
		t.Errorf("first breach = %+v", breaches[0])
	}
}
