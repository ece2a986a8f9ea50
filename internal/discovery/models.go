package discovery

import (
	"time"

	"starscape-server/internal/galaxy"
)

// Record is one discovered object. Everything needed to describe the find
// is denormalized into the record, so discovery history stays meaningful
// after the owning chunk is evicted.
type Record struct {
	Key          string            `json:"key"`
	Kind         galaxy.ObjectKind `json:"kind"`
	TypeName     string            `json:"type_name"`
	X            float64           `json:"x"`
	Y            float64           `json:"y"`
	PairID       string            `json:"pair_id,omitempty"`
	Designation  string            `json:"designation,omitempty"`
	TwinX        float64           `json:"twin_x,omitempty"`
	TwinY        float64           `json:"twin_y,omitempty"`
	DiscoveredAt time.Time         `json:"discovered_at"`
}

// Summary aggregates discovery counts per object kind.
type Summary struct {
	Total  int                       `json:"total"`
	ByKind map[galaxy.ObjectKind]int `json:"by_kind"`
}
