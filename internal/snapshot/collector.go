package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/status-snapshot/internal/domain"
	"github.com/bissquit/status-snapshot/internal/pkg/ctxlog"
	"github.com/bissquit/status-snapshot/internal/pkg/metrics"
	"github.com/bissquit/status-snapshot/internal/regional"
	"github.com/bissquit/status-snapshot/internal/statuspage"
	"golang.org/x/time/rate"
)

// StatusPageFetcher fetches one provider summary.
type StatusPageFetcher interface {
	Fetch(ctx context.Context, provider domain.Provider) statuspage.Result
}

// RegionalFetcher fetches regional availability.
type RegionalFetcher interface {
	Fetch(ctx context.Context) regional.Result
}

// Collector runs every fetch of a snapshot pass.
type Collector struct {
	providers []domain.Provider
	pages     StatusPageFetcher
	regions   RegionalFetcher
	limiter   *rate.Limiter
}

// NewCollector creates a collector. A nil limiter means provider fetches
// are not paced.
func NewCollector(providers []domain.Provider, pages StatusPageFetcher, regions RegionalFetcher, limiter *rate.Limiter) *Collector {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return &Collector{
		providers: providers,
		pages:     pages,
		regions:   regions,
		limiter:   limiter,
	}
}

// Collect fetches every provider in order, then the regional monitor.
// Upstream failures never fail the pass; only a cancelled context or a
// document that breaks the taxonomy does.
func (c *Collector) Collect(ctx context.Context) (*Document, error) {
	doc := &Document{
		RealData: make(RealData, 0, len(c.providers)),
	}

	for _, provider := range c.providers {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for fetch slot: %w", err)
		}

		start := time.Now()
		result := c.pages.Fetch(ctx, provider)
		metrics.RecordFetch(metrics.TargetStatusPage, string(result.Source), time.Since(start))
		metrics.RecordIncidents(provider.Name, len(result.Incidents))

		ctxlog.FromContext(ctx).Debug("provider fetched",
			"provider", provider.Name,
			"source", result.Source,
			"incidents", len(result.Incidents),
		)

		doc.RealData = append(doc.RealData, ProviderIncidents{
			Provider:  provider.Name,
			Incidents: result.Incidents,
		})
	}

	start := time.Now()
	result := c.regions.Fetch(ctx)
	metrics.RecordFetch(metrics.TargetRegional, string(result.Source), time.Since(start))
	recordRegions(result.Regions)

	ctxlog.FromContext(ctx).Debug("regional status fetched",
		"source", result.Source,
		"regions", len(result.Regions),
	)

	doc.StatesData = result.Regions
	if doc.StatesData == nil {
		doc.StatesData = []domain.RegionStatus{}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

func recordRegions(regions []domain.RegionStatus) {
	var up, slow int
	for _, region := range regions {
		if region.Status == domain.RegionHealthUp {
			up++
		} else {
			slow++
		}
	}
	metrics.RecordRegions(string(domain.RegionHealthUp), up)
	metrics.RecordRegions(string(domain.RegionHealthSlow), slow)
}
