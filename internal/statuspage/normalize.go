package statuspage

import (
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/status-snapshot/internal/domain"
	"golang.org/x/text/cases"
)

// TimeLayout is the display format of incident timestamps (day/month hour:minute).
const TimeLayout = "02/01 15:04"

const summaryTimeLayout = "2006-01-02T15:04:05"

// statusMap translates StatusPage.io indicators and lifecycle statuses
// into the shared incident taxonomy.
var statusMap = map[string]domain.IncidentStatus{
	"operational":          domain.IncidentStatusOperational,
	"degraded_performance": domain.IncidentStatusDegraded,
	"partial_outage":       domain.IncidentStatusDegraded,
	"major_outage":         domain.IncidentStatusInvestigating,
	"under_maintenance":    domain.IncidentStatusScheduled,
	"investigating":        domain.IncidentStatusInvestigating,
}

var (
	activeIncidentStatuses = map[string]bool{
		"investigating": true,
		"identified":    true,
		"monitoring":    true,
		"in_progress":   true,
	}

	activeMaintenanceStatuses = map[string]bool{
		"scheduled":   true,
		"in_progress": true,
	}
)

func vocabularyKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// MapIndicator maps the overall page indicator. Unknown values are treated as operational.
func MapIndicator(indicator string) domain.IncidentStatus {
	if status, ok := statusMap[vocabularyKey(indicator)]; ok {
		return status
	}
	return domain.IncidentStatusOperational
}

// MapIncidentStatus maps an incident lifecycle status. Unknown values are treated as investigating.
func MapIncidentStatus(status string) domain.IncidentStatus {
	if mapped, ok := statusMap[vocabularyKey(status)]; ok {
		return mapped
	}
	return domain.IncidentStatusInvestigating
}

// IsActiveIncident reports whether an incident lifecycle status is still open.
func IsActiveIncident(status string) bool {
	return activeIncidentStatuses[vocabularyKey(status)]
}

// IsActiveMaintenance reports whether a maintenance is upcoming or running.
func IsActiveMaintenance(status string) bool {
	return activeMaintenanceStatuses[vocabularyKey(status)]
}

// FormatTimestamp drops sub-second precision and the zone suffix from a
// summary timestamp and renders it with TimeLayout. The wall clock of the
// source is kept as is, without zone conversion.
func FormatTimestamp(raw string) (string, error) {
	value := raw
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}
	if len(value) > len(summaryTimeLayout) {
		value = value[:len(summaryTimeLayout)]
	}

	t, err := time.Parse(summaryTimeLayout, value)
	if err != nil {
		return "", fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t.Format(TimeLayout), nil
}
