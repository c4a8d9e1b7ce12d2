// Package hibp is the HaveIBeenPwned client: k-anonymity password range
// checks against the Pwned Passwords API and full breach lookups for email
// accounts.
package hibp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/granth1406/HawkEye/utils"
)

const (
	defaultPasswordBaseURL = "https://api.pwnedpasswords.com"
	defaultAccountBaseURL  = "https://haveibeenpwned.com/api/v3"

	userAgent = "HawkEye-SecurityScanner/2.0"
)

// Breach is one entry from the breached-account endpoint. Field names
// follow the HIBP v3 response.
type Breach struct {
	Name        string `json:"Name"`
	Title       string `json:"Title"`
	BreachDate  string `json:"BreachDate"`
	Description string `json:"Description"`
}

type Client struct {
	// PasswordBaseURL and AccountBaseURL default to the public API hosts;
	// tests point them at an httptest server.
	PasswordBaseURL string
	AccountBaseURL  string
	APIKey          string
	HTTPClient      *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		PasswordBaseURL: defaultPasswordBaseURL,
		AccountBaseURL:  defaultAccountBaseURL,
		APIKey:          apiKey,
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckPassword reports how many times a password appears in known
// breaches. Only the first 5 hex characters of the SHA-1 digest are sent
// upstream; the suffix match happens locally against the returned range.
func (c *Client) CheckPassword(ctx context.Context, password string) (int, error) {
	prefix, suffix := utils.SHA1PrefixSuffix(password)

	body, err := c.get(ctx, c.PasswordBaseURL+"/range/"+prefix, nil)
	if err != nil {
		return 0, err
	}

	// Response is newline-delimited SUFFIX:COUNT lines sharing the prefix.
	for _, line := range strings.Split(string(body), "\r\n") {
		rest, found := strings.CutPrefix(line, suffix+":")
		if !found {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, fmt.Errorf("%w: bad range line %q", ErrUpstream, line)
		}
		return count, nil
	}
	return 0, nil
}

// CheckAccount returns the breaches an email address appears in. A 404
// from the breached-account endpoint means "never breached" and yields an
// empty slice, not an error. The email must already be validated; this
// method does not re-check it.
func (c *Client) CheckAccount(ctx context.Context, email string) ([]Breach, error) {
	endpoint := c.AccountBaseURL + "/breachedaccount/" + url.PathEscape(email) + "?truncateResponse=false"

	body, err := c.get(ctx, endpoint, map[string]string{
		"hibp-api-key": c.APIKey,
		"Accept":       "application/json",
	})
	if err != nil {
		if err == errNotFound {
			return nil, nil
		}
		return nil, err
	}

	var breaches []Breach
	if err := json.Unmarshal(body, &breaches); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return breaches, nil
}

// errNotFound is internal: CheckAccount turns it into the empty result.
var errNotFound = fmt.Errorf("hibp: not found")

func (c *Client) get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusServiceUnavailable:
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// An HTML body on a 200 means an error page slipped through a proxy or
	// the service itself.
	if strings.HasPrefix(strings.TrimSpace(string(body)), "<!DOCTYPE") {
		return nil, ErrUpstream
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
