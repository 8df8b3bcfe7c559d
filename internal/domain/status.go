// Package domain holds the shared status taxonomy written to the snapshot.
package domain

// IncidentStatus is the normalized status of an incident record.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusOperational   IncidentStatus = "operational"
	IncidentStatusDegraded      IncidentStatus = "degraded"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusScheduled     IncidentStatus = "scheduled"
)

// IsValid checks if the status belongs to the closed incident status set.
func (s IncidentStatus) IsValid() bool {
	return s == IncidentStatusOperational ||
		s == IncidentStatusDegraded ||
		s == IncidentStatusInvestigating ||
		s == IncidentStatusScheduled
}

// RegionHealth is the status of a single federative unit.
type RegionHealth string

// Region health values.
const (
	RegionHealthUp   RegionHealth = "up"
	RegionHealthSlow RegionHealth = "slow"
)

// IsValid checks if the health value is up or slow.
func (h RegionHealth) IsValid() bool {
	return h == RegionHealthUp || h == RegionHealthSlow
}

// Provider is an external service exposing a StatusPage.io summary endpoint.
type Provider struct {
	Name string `koanf:"name" validate:"required"`
	URL  string `koanf:"url" validate:"required,url"`
}

// Incident is a disruption, a maintenance window or a synthetic health record.
type Incident struct {
	Title  string         `json:"title"`
	Status IncidentStatus `json:"status"`
	Time   string         `json:"time"`
	New    bool           `json:"new"`
}

// RegionStatus is the health of one federative unit (UF).
type RegionStatus struct {
	UF     string       `json:"uf"`
	Status RegionHealth `json:"status"`
}
