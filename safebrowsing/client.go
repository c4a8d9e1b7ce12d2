// Package safebrowsing wraps the Google Safe Browsing v4 threatMatches
// lookup. Unlike VirusTotal this API is synchronous: one request, one
// answer, no polling.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://safebrowsing.googleapis.com"

// Match is one threat-list hit for the queried URL.
type Match struct {
	ThreatType      string `json:"threatType"`
	PlatformType    string `json:"platformType"`
	ThreatEntryType string `json:"threatEntryType"`
	Threat          struct {
		URL string `json:"url"`
	} `json:"threat"`
}

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

// CheckURL queries the threat-match endpoint for the URL's membership in
// the malware, social-engineering, unwanted-software and
// potentially-harmful-application lists across all platforms.
func (c *Client) CheckURL(ctx context.Context, target string) (matched bool, matches []Match, err error) {
	payload := map[string]interface{}{
		"client": map[string]string{
			"clientId":      "HawkEye",
			"clientVersion": "1.0.0",
		},
		"threatInfo": map[string]interface{}{
			"threatTypes": []string{
				"MALWARE",
				"SOCIAL_ENGINEERING",
				"UNWANTED_SOFTWARE",
				"POTENTIALLY_HARMFUL_APPLICATION",
			},
			"platformTypes":    []string{"ANY_PLATFORM"},
			"threatEntryTypes": []string{"URL"},
			"threatEntries":    []map[string]string{{"url": target}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, nil, err
	}

	endpoint := c.BaseURL + "/v4/threatMatches:find?key=" + c.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil, fmt.Errorf("safebrowsing: status %d", resp.StatusCode)
	}

	var out struct {
		Matches []Match `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, nil, fmt.Errorf("safebrowsing: decoding response: %w", err)
	}
	return len(out.Matches) > 0, out.Matches, nil
}
