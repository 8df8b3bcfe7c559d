package regional

import "github.com/bissquit/status-snapshot/internal/domain"

// fallbackSlowUF is the only unit reported as slow in the static fallback.
const fallbackSlowUF = "CE"

// fallbackUFs lists the 27 federative units in display order.
var fallbackUFs = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO",
	"MA", "MT", "MS", "MG", "PA", "PB", "PR", "PE", "PI",
	"RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// FallbackRegions returns the static table used when the monitor is unreachable.
func FallbackRegions() []domain.RegionStatus {
	regions := make([]domain.RegionStatus, 0, len(fallbackUFs))
	for _, uf := range fallbackUFs {
		status := domain.RegionHealthUp
		if uf == fallbackSlowUF {
			status = domain.RegionHealthSlow
		}
		regions = append(regions, domain.RegionStatus{UF: uf, Status: status})
	}
	return regions
}
