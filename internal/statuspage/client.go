// Package statuspage fetches StatusPage.io summaries and normalizes them
// into the shared incident taxonomy.
package statuspage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bissquit/status-snapshot/internal/domain"
	"github.com/bissquit/status-snapshot/internal/pkg/ctxlog"
)

const (
	defaultTimeout = 10 * time.Second
	summaryPath    = "/api/v2/summary.json"

	// FallbackTitle is the title of the record emitted when a summary cannot be fetched.
	FallbackTitle = "Erro ao carregar status. Dados podem estar desatualizados."
)

// Fetch errors.
var (
	ErrFetch             = errors.New("fetch status page")
	ErrMalformedResponse = errors.New("malformed summary response")
)

// StatusError is returned for non-2xx summary responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Source tells where the incidents of a Result came from.
type Source string

// Result sources.
const (
	// SourceLive means at least one active incident or maintenance was found.
	SourceLive Source = "live"
	// SourceSummary means the page had nothing active and the overall health was used.
	SourceSummary Source = "summary"
	// SourceFallback means the summary could not be fetched.
	SourceFallback Source = "fallback"
)

// Result is the outcome of fetching one provider. Incidents is never empty.
type Result struct {
	Incidents []domain.Incident
	Source    Source
	Err       error
}

// Config holds status page client configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Client fetches StatusPage.io summaries.
type Client struct {
	config     Config
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new status page client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		now: time.Now,
	}
}

// Fetch loads the summary of a provider. Failures are logged and turned into
// a fallback record, so the returned Result always carries incidents.
func (c *Client) Fetch(ctx context.Context, provider domain.Provider) Result {
	apiURL := strings.TrimRight(provider.URL, "/") + summaryPath

	summary, err := c.fetchSummary(ctx, apiURL)
	if err == nil {
		var incidents []domain.Incident
		incidents, err = c.normalize(summary)
		if err == nil {
			return summaryResult(incidents, summary, c.now())
		}
	}

	ctxlog.FromContext(ctx).Error("failed to fetch status page",
		"provider", provider.Name,
		"url", apiURL,
		"error", err,
	)

	return Result{
		Incidents: FallbackIncidents(c.now()),
		Source:    SourceFallback,
		Err:       err,
	}
}

// FallbackIncidents builds the single record used when a summary is unreachable.
func FallbackIncidents(now time.Time) []domain.Incident {
	return []domain.Incident{{
		Title:  FallbackTitle,
		Status: domain.IncidentStatusDegraded,
		Time:   now.Format(TimeLayout),
		New:    true,
	}}
}

func summaryResult(incidents []domain.Incident, summary *summaryResponse, now time.Time) Result {
	if len(incidents) > 0 {
		return Result{Incidents: incidents, Source: SourceLive}
	}

	return Result{
		Incidents: []domain.Incident{{
			Title:  summary.Status.Description,
			Status: MapIndicator(summary.Status.Indicator),
			Time:   now.Format(TimeLayout),
			New:    false,
		}},
		Source: SourceSummary,
	}
}

type summaryResponse struct {
	Status                *pageStatus          `json:"status"`
	Incidents             []summaryIncident    `json:"incidents"`
	ScheduledMaintenances []summaryMaintenance `json:"scheduled_maintenances"`
}

type pageStatus struct {
	Indicator   string `json:"indicator"`
	Description string `json:"description"`
}

type summaryIncident struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type summaryMaintenance struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ScheduledFor string `json:"scheduled_for"`
}

func (c *Client) fetchSummary(ctx context.Context, apiURL string) (*summaryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %w", ErrFetch, &StatusError{Code: resp.StatusCode})
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrMalformedResponse, err)
	}
	if summary.Status == nil {
		return nil, fmt.Errorf("%w: missing status object", ErrMalformedResponse)
	}

	return &summary, nil
}

func (c *Client) normalize(summary *summaryResponse) ([]domain.Incident, error) {
	var incidents []domain.Incident

	for _, incident := range summary.Incidents {
		if !IsActiveIncident(incident.Status) {
			continue
		}
		formatted, err := FormatTimestamp(incident.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: incident %q: %v", ErrMalformedResponse, incident.Name, err)
		}
		incidents = append(incidents, domain.Incident{
			Title:  incident.Name,
			Status: MapIncidentStatus(incident.Status),
			Time:   formatted,
			New:    true,
		})
	}

	for _, maintenance := range summary.ScheduledMaintenances {
		if !IsActiveMaintenance(maintenance.Status) {
			continue
		}
		formatted, err := FormatTimestamp(maintenance.ScheduledFor)
		if err != nil {
			return nil, fmt.Errorf("%w: maintenance %q: %v", ErrMalformedResponse, maintenance.Name, err)
		}
		incidents = append(incidents, domain.Incident{
			Title:  maintenance.Name,
			Status: domain.IncidentStatusScheduled,
			Time:   formatted,
			New:    true,
		})
	}

	return incidents, nil
}
