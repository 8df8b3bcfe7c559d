// Package snapshot assembles provider and regional statuses into one
// document and persists it.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bissquit/status-snapshot/internal/domain"
)

// ErrInvalidDocument is returned when a document breaks the status taxonomy.
var ErrInvalidDocument = errors.New("invalid snapshot document")

// ProviderIncidents holds the incidents reported for one provider.
type ProviderIncidents struct {
	Provider  string
	Incidents []domain.Incident
}

// RealData is the per-provider section. It is encoded as a JSON object whose
// keys follow the configured provider order.
type RealData []ProviderIncidents

// MarshalJSON implements json.Marshaler.
func (d RealData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, entry := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(entry.Provider); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		incidents := entry.Incidents
		if incidents == nil {
			incidents = []domain.Incident{}
		}
		if err := enc.Encode(incidents); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Get returns the incidents of a provider.
func (d RealData) Get(provider string) ([]domain.Incident, bool) {
	for _, entry := range d {
		if entry.Provider == provider {
			return entry.Incidents, true
		}
	}
	return nil, false
}

// Document is the consolidated snapshot written on each run.
type Document struct {
	RealData   RealData              `json:"REAL_DATA"`
	StatesData []domain.RegionStatus `json:"STATES_DATA"`
}

// Validate checks that every provider has incidents and that all statuses
// belong to the closed sets.
func (d *Document) Validate() error {
	for _, entry := range d.RealData {
		if len(entry.Incidents) == 0 {
			return fmt.Errorf("%w: provider %q has no incidents", ErrInvalidDocument, entry.Provider)
		}
		for _, incident := range entry.Incidents {
			if !incident.Status.IsValid() {
				return fmt.Errorf("%w: provider %q has incident status %q",
					ErrInvalidDocument, entry.Provider, incident.Status)
			}
		}
	}

	for _, region := range d.StatesData {
		if !region.Status.IsValid() {
			return fmt.Errorf("%w: region %q has status %q", ErrInvalidDocument, region.UF, region.Status)
		}
	}

	return nil
}

// Encode renders the document as indented JSON without escaping HTML or
// non-ASCII characters.
func Encode(doc *Document) ([]byte, error) {
	out := *doc
	if out.RealData == nil {
		out.RealData = RealData{}
	}
	if out.StatesData == nil {
		out.StatesData = []domain.RegionStatus{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
