// Package summarize wraps the external text-summarization service. The
// service is opaque: raw text in, summary string out, or failure. Callers
// degrade to "no summary" when it fails; a post write never depends on it.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client produces a short summary for a block of text.
type Client interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const (
	maxAttempts    = 3
	attemptTimeout = 5 * time.Second
	retryDelay     = 200 * time.Millisecond
)

// HTTPClient calls a summarization endpoint over HTTP with bounded retries.
type HTTPClient struct {
	url  string
	http *http.Client
}

// NewHTTPClient creates a client for the given summarizer URL.
func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		url:  url,
		http: &http.Client{},
	}
}

type request struct {
	Text string `json:"text"`
}

type response struct {
	Summary string `json:"summary"`
}

// Summarize posts the text and returns the summary. It retries transient
// failures up to maxAttempts and respects ctx cancellation between and
// during attempts.
func (c *HTTPClient) Summarize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(request{Text: text})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		summary, err := c.attempt(ctx, payload)
		if err == nil {
			return summary, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("summarizer failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *HTTPClient) attempt(ctx context.Context, payload []byte) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Noop is a Client that always reports no summary. Used when no summarizer
// is configured or the summaries flag is off.
type Noop struct{}

// Summarize returns an empty summary.
func (Noop) Summarize(ctx context.Context, text string) (string, error) {
	return "", nil
}
