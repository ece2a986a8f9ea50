package universe

import (
	"starscape-server/internal/chunk"
	"starscape-server/internal/parallax"
	"starscape-server/internal/region"
	"starscape-server/internal/spatial"
)

// RegionView is the client-facing slice of a region classification.
type RegionView struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Hue       float64 `json:"hue"`
	Influence float64 `json:"influence"`
	Distance  float64 `json:"distance"`
}

func regionViewFrom(info region.Info) RegionView {
	return RegionView{
		Key:       info.Definition.Key,
		Name:      info.Definition.Name,
		Hue:       info.Definition.Hue,
		Influence: info.Influence,
		Distance:  info.Distance,
	}
}

// View is the full renderable state around a position: the flattened active
// chunks, the local region, and the decorative backdrop.
type View struct {
	Seed         string               `json:"seed"`
	Position     spatial.Point        `json:"position"`
	Region       RegionView           `json:"region"`
	ActiveChunks []spatial.ChunkCoord `json:"active_chunks"`
	Objects      chunk.Aggregate      `json:"objects"`
	Parallax     []parallax.Layer     `json:"parallax"`
}

// PositionUpdate is the result of moving the reference point.
type PositionUpdate struct {
	Position     spatial.Point        `json:"position"`
	Generated    int                  `json:"generated"`
	Evicted      int                  `json:"evicted"`
	ActiveChunks []spatial.ChunkCoord `json:"active_chunks"`
	Region       RegionView           `json:"region"`
}

// Status summarizes the universe engine for the status endpoint.
type Status struct {
	Seed         string `json:"seed"`
	ChunkSize    int    `json:"chunk_size"`
	LoadRadius   int    `json:"load_radius"`
	ActiveChunks int    `json:"active_chunks"`
	KnownPairs   int    `json:"known_pairs"`
	Discoveries  int    `json:"discoveries"`
}
