package playtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRejected is returned when the service refused a command with 409.
var ErrRejected = errors.New("command rejected")

// apiError mirrors the service error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// client wraps http.Client for the race API.
type client struct {
	base    string
	http    *http.Client
	stats   *Stats
	verbose bool
	logf    func(format string, args ...any)
}

func newClient(cfg *Config, stats *Stats, logf func(string, ...any)) *client {
	return &client{
		base:    cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		stats:   stats,
		verbose: cfg.Verbose,
		logf:    logf,
	}
}

// do sends a request and decodes a 2xx JSON body into out when non-nil.
// A 409 returns an error wrapping ErrRejected with the service reason.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.stats.Requests++
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if c.verbose {
		c.logf("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		c.stats.Rejections++
		var e apiError
		_ = json.Unmarshal(data, &e)
		return fmt.Errorf("%w: %s %s: %s", ErrRejected, method, path, e.Code)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
