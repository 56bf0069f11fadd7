// Package zones fetches and filters the landing-zone registry.
//
// The registry is a plain-text endpoint with one "<account_id> <zone_name>"
// per line. Blank lines and lines starting with "#" are comments.
package zones

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
)

// Zone is one landing zone entry.
type Zone struct {
	AccountID string
	Name      string
}

// Environment returns the zone's environment suffix, or "" when the name
// carries none.
func (z Zone) Environment() string {
	for _, env := range []string{"nonprod", "preprod", "prod"} {
		if strings.HasSuffix(z.Name, env) {
			return env
		}
	}
	return ""
}

// Fetcher retrieves the zone registry over HTTP with retries.
type Fetcher struct {
	client *httpclient.Client
}

// NewFetcher builds a Fetcher with the given request timeout and three
// retries on transient failures.
func NewFetcher(timeout time.Duration) *Fetcher {
	backoff := heimdall.NewConstantBackoff(2*time.Second, 500*time.Millisecond)
	return &Fetcher{
		client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(3),
			httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
		),
	}
}

// Fetch downloads and parses the registry. Malformed lines are skipped.
func (f *Fetcher) Fetch(url string) ([]Zone, error) {
	resp, err := f.client.Get(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zones from %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zone registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone registry response: %w", err)
	}

	return Parse(string(body)), nil
}

// Parse extracts zones from the registry text.
func Parse(text string) []Zone {
	var out []Zone
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out = append(out, Zone{AccountID: fields[0], Name: fields[1]})
	}
	return out
}

// FilterByNames keeps zones whose name matches any of names exactly.
func FilterByNames(all []Zone, names []string) []Zone {
	var out []Zone
	for _, z := range all {
		for _, n := range names {
			if z.Name == n {
				out = append(out, z)
				break
			}
		}
	}
	return out
}

// FilterByEnvironment keeps zones whose name ends with the environment
// suffix.
func FilterByEnvironment(all []Zone, environment string) []Zone {
	if environment == "" {
		return nil
	}
	var out []Zone
	for _, z := range all {
		if strings.HasSuffix(z.Name, environment) {
			out = append(out, z)
		}
	}
	return out
}
