// Package fetch retrieves remote documents over HTTP. It returns full
// response bodies; streaming and transport tuning are deliberately out
// of scope.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single fetch end to end.
const DefaultTimeout = 60 * time.Second

// Client fetches URLs. The zero value is not usable; use NewClient.
type Client struct {
	http *http.Client
}

// NewClient returns a client whose requests are bounded by timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Fetch downloads url and returns the full response body. Any
// transport failure or non-2xx status is an error.
func (c *Client) Fetch(url string) ([]byte, error) {
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	return body, nil
}
