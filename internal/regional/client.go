// Package regional fetches per-UF availability from the SEFAZ monitor.
package regional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bissquit/status-snapshot/internal/domain"
	"github.com/bissquit/status-snapshot/internal/pkg/ctxlog"
)

const (
	defaultTimeout = 10 * time.Second

	// DefaultURL is the public SEFAZ monitor endpoint.
	DefaultURL = "https://monitorsefaz.webmaniabr.com/api/v1/status"

	// DefaultUserAgent mimics a desktop browser to get past basic bot filtering.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Fetch errors.
var (
	ErrFetch             = errors.New("fetch regional status")
	ErrMalformedResponse = errors.New("malformed regional response")
)

// StatusError is returned for non-2xx monitor responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Source tells whether regions came from the monitor or from the static table.
type Source string

// Result sources.
const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is the outcome of a regional fetch.
type Result struct {
	Regions []domain.RegionStatus
	Source  Source
	Err     error
}

// Config holds regional client configuration.
type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches the regional monitor.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new regional client.
func NewClient(config Config) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Fetch loads regional availability. On failure it logs the error and
// returns FallbackRegions.
func (c *Client) Fetch(ctx context.Context) Result {
	regions, err := c.fetchRegions(ctx)
	if err == nil {
		return Result{Regions: regions, Source: SourceLive}
	}

	ctxlog.FromContext(ctx).Error("failed to fetch regional status",
		"url", c.config.URL,
		"error", err,
	)

	return Result{
		Regions: FallbackRegions(),
		Source:  SourceFallback,
		Err:     err,
	}
}

func (c *Client) fetchRegions(ctx context.Context) ([]domain.RegionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %w", ErrFetch, &StatusError{Code: resp.StatusCode})
	}

	return decodeRegions(resp.Body)
}

// decodeRegions walks the top-level object token by token so that records
// keep the order of the response.
func decodeRegions(r io.Reader) ([]domain.RegionStatus, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrMalformedResponse, tok)
	}

	regions := []domain.RegionStatus{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		uf, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrMalformedResponse, tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: value of %s: %v", ErrMalformedResponse, uf, err)
		}

		status := domain.RegionHealthSlow
		if isUp(value) {
			status = domain.RegionHealthUp
		}
		regions = append(regions, domain.RegionStatus{UF: uf, Status: status})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return regions, nil
}

// isUp reads the status flag of one unit. Anything that is not an object
// with a truthy status is treated as slow.
func isUp(value json.RawMessage) bool {
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(value, &entry); err != nil {
		return false
	}
	flag, ok := entry["status"]
	if !ok {
		return false
	}
	return truthy(flag)
}

func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}
