// Package source adapts upstream registries to snapshots.
//
// A Fetch either returns a complete snapshot (the top-level listing
// succeeded) or an error (hard failure: the coordinator skips the pair
// for the cycle). Per-item detail failures never fail a fetch; they
// surface as records with absent fingerprints so the identifier set
// stays complete.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// ErrRateLimited marks a listing rejected by the upstream rate limiter.
// Still a hard failure; the next cycle simply tries again.
var ErrRateLimited = errors.New("source: rate limited")

// maxBody caps how much of an upstream response body is read.
const maxBody = 10 * 1024 * 1024

// Source fetches a fresh snapshot of one organization's artifacts.
type Source interface {
	Provider() snapshot.Provider
	Org() string
	Fetch(ctx context.Context) (*snapshot.Snapshot, error)
}

// Config tunes an adapter. The zero value works for production.
type Config struct {
	BaseURL string        // API base override, mainly for tests. Empty selects the provider default.
	Token   string        // bearer token for authenticated listing, if any
	Timeout time.Duration // per-request timeout. Default: 30s.
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// statusError is a non-200 upstream response.
type statusError struct {
	code    int
	excerpt string
}

func (e *statusError) Error() string {
	if e.excerpt == "" {
		return fmt.Sprintf("HTTP %d", e.code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.code, e.excerpt)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

// getJSON performs one GET and returns the body of a 200 response.
// 403 wraps ErrRateLimited; any other non-200 status becomes a
// statusError carrying a short body excerpt.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	case http.StatusForbidden:
		return nil, fmt.Errorf("%w (HTTP 403)", ErrRateLimited)
	default:
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &statusError{code: resp.StatusCode, excerpt: strings.TrimSpace(string(excerpt))}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
