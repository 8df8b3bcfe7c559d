package statuspage

import (
	"testing"

	"github.com/bissquit/status-snapshot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIndicator(t *testing.T) {
	tests := []struct {
		indicator string
		expected  domain.IncidentStatus
	}{
		{"operational", domain.IncidentStatusOperational},
		{"degraded_performance", domain.IncidentStatusDegraded},
		{"partial_outage", domain.IncidentStatusDegraded},
		{"major_outage", domain.IncidentStatusInvestigating},
		{"under_maintenance", domain.IncidentStatusScheduled},
		{"investigating", domain.IncidentStatusInvestigating},
		{"Major_Outage ", domain.IncidentStatusInvestigating},
		{"none", domain.IncidentStatusOperational},
		{"critical", domain.IncidentStatusOperational},
		{"", domain.IncidentStatusOperational},
	}

	for _, tt := range tests {
		t.Run(tt.indicator, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapIndicator(tt.indicator))
		})
	}
}

func TestMapIncidentStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected domain.IncidentStatus
	}{
		{"investigating", domain.IncidentStatusInvestigating},
		{"identified", domain.IncidentStatusInvestigating},
		{"monitoring", domain.IncidentStatusInvestigating},
		{"in_progress", domain.IncidentStatusInvestigating},
		{"partial_outage", domain.IncidentStatusDegraded},
		{"something_new", domain.IncidentStatusInvestigating},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapIncidentStatus(tt.status))
		})
	}
}

func TestIsActive(t *testing.T) {
	assert.True(t, IsActiveIncident("identified"))
	assert.True(t, IsActiveIncident("in_progress"))
	assert.False(t, IsActiveIncident("resolved"))
	assert.False(t, IsActiveIncident("postmortem"))

	assert.True(t, IsActiveMaintenance("scheduled"))
	assert.True(t, IsActiveMaintenance("in_progress"))
	assert.False(t, IsActiveMaintenance("completed"))
	assert.False(t, IsActiveMaintenance("verifying"))
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"milliseconds utc", "2024-01-02T03:04:05.000Z", "02/01 03:04"},
		{"milliseconds with offset", "2024-12-31T23:59:59.123-03:00", "31/12 23:59"},
		{"no fraction", "2024-06-15T10:20:30Z", "15/06 10:20"},
		{"plain", "2024-06-15T10:20:30", "15/06 10:20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatTimestamp(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatTimestamp_Invalid(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "2024-13-01T00:00:00.000Z"} {
		_, err := FormatTimestamp(raw)
		assert.Error(t, err, raw)
	}
}
