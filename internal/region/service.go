package region

import (
	"log/slog"
	"math"
	"sync"

	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

const saltRegion = 0x5A17C3D1

// Center is a deterministically placed region center inside a macro-area.
type Center struct {
	Pos  spatial.Point `json:"pos"`
	Type string        `json:"type"`
}

// Info is the classification of a single world coordinate: the dominant
// region, the distance to its center, and a smoothed influence in [0,1].
type Info struct {
	Definition Definition    `json:"definition"`
	Center     spatial.Point `json:"center"`
	Distance   float64       `json:"distance"`
	Influence  float64       `json:"influence"`
}

// Config carries the macro-scale tuning for region placement and lookup.
type Config struct {
	AreaSize          int     // macro-area edge length in world units
	MaxRadius         float64 // influence reaches zero at this distance
	FalloffExponent   float64
	MinSeparation     float64 // between centers within one macro-area
	PlacementAttempts int
	CellSize          int // lookup cache granularity
}

// DefaultConfig matches a 2000-unit chunk grid: macro-areas span 25 chunks.
func DefaultConfig() Config {
	return Config{
		AreaSize:          50000,
		MaxRadius:         60000,
		FalloffExponent:   1.6,
		MinSeparation:     16000,
		PlacementAttempts: 4,
		CellSize:          2000,
	}
}

// Service assigns macro-scale region classifications. Both caches are
// memoized lazily and guarded by one mutex so concurrent chunk generation
// cannot corrupt them.
type Service struct {
	seed   int64
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	areas map[spatial.AreaCoord][]Center
	cells map[spatial.CellCoord]Info
}

func NewService(seed int64, cfg Config, logger *slog.Logger) *Service {
	logger.Debug("Initializing region service", "area_size", cfg.AreaSize, "max_radius", cfg.MaxRadius)

	return &Service{
		seed:   seed,
		cfg:    cfg,
		logger: logger,
		areas:  make(map[spatial.AreaCoord][]Center),
		cells:  make(map[spatial.CellCoord]Info),
	}
}

// RegionAt classifies a world coordinate by nearest region center, cached
// per coarse grid cell. With no center in range it falls back to the
// baseline region at full influence.
func (s *Service) RegionAt(x, y float64) Info {
	p := spatial.Point{X: x, Y: y}
	cell := spatial.CellOf(p, s.cfg.CellSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.cells[cell]; ok {
		return info
	}

	// Classify by the cell center so every coordinate in the cell agrees.
	cp := spatial.Point{
		X: float64(cell.X*s.cfg.CellSize) + float64(s.cfg.CellSize)/2,
		Y: float64(cell.Y*s.cfg.CellSize) + float64(s.cfg.CellSize)/2,
	}

	centers := s.centersNearLocked(cp, s.cfg.MaxRadius)

	info := Info{
		Definition: DefinitionFor(BaselineKey),
		Center:     cp,
		Distance:   0,
		Influence:  1,
	}

	best := math.MaxFloat64
	for _, c := range centers {
		if d := cp.DistanceTo(c.Pos); d < best {
			best = d
			info = Info{
				Definition: DefinitionFor(c.Type),
				Center:     c.Pos,
				Distance:   d,
				Influence:  s.influence(d),
			}
		}
	}

	s.cells[cell] = info
	return info
}

// CentersNear returns all region centers within radius plus one region-scale
// margin of the given point.
func (s *Service) CentersNear(x, y, radius float64) []Center {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.centersNearLocked(spatial.Point{X: x, Y: y}, radius)
}

func (s *Service) centersNearLocked(p spatial.Point, radius float64) []Center {
	reach := radius + float64(s.cfg.AreaSize)
	minArea := spatial.AreaOf(spatial.Point{X: p.X - reach, Y: p.Y - reach}, s.cfg.AreaSize)
	maxArea := spatial.AreaOf(spatial.Point{X: p.X + reach, Y: p.Y + reach}, s.cfg.AreaSize)

	var centers []Center
	for ay := minArea.Y; ay <= maxArea.Y; ay++ {
		for ax := minArea.X; ax <= maxArea.X; ax++ {
			for _, c := range s.centersForAreaLocked(spatial.AreaCoord{X: ax, Y: ay}) {
				if p.DistanceTo(c.Pos) <= reach {
					centers = append(centers, c)
				}
			}
		}
	}
	return centers
}

// centersForAreaLocked lazily generates the fixed center set of one
// macro-area. The same area always yields the same centers for a fixed
// universe seed.
func (s *Service) centersForAreaLocked(area spatial.AreaCoord) []Center {
	if centers, ok := s.areas[area]; ok {
		return centers
	}

	ox, oy := area.Origin(s.cfg.AreaSize)
	r := rng.New(int64(rng.PositionHash(s.seed, ox, oy) ^ saltRegion))

	centers := make([]Center, 0, s.cfg.PlacementAttempts)
	for i := 0; i < s.cfg.PlacementAttempts; i++ {
		candidate := spatial.Point{
			X: float64(ox) + r.Next()*float64(s.cfg.AreaSize),
			Y: float64(oy) + r.Next()*float64(s.cfg.AreaSize),
		}

		tooClose := false
		for _, c := range centers {
			if candidate.DistanceTo(c.Pos) < s.cfg.MinSeparation {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		centers = append(centers, Center{
			Pos:  candidate,
			Type: pickRegionType(r, centers),
		})
	}

	s.areas[area] = centers
	s.logger.Debug("Macro-area centers generated", "area_x", area.X, "area_y", area.Y, "count", len(centers))
	return centers
}

// pickRegionType samples the catalog by rarity, down-weighting types already
// present in the macro-area so neighboring centers tend to differ.
func pickRegionType(r *rng.ChunkRandom, existing []Center) string {
	counts := make(map[string]int, len(existing))
	for _, c := range existing {
		counts[c.Type]++
	}

	weights := make([]float64, len(Catalog))
	var total float64
	for i, def := range Catalog {
		w := def.rarity * math.Pow(0.35, float64(counts[def.Key]))
		weights[i] = w
		total += w
	}

	roll := r.Next() * total
	var cum float64
	for i, def := range Catalog {
		cum += weights[i]
		if roll < cum {
			return def.Key
		}
	}
	// Floating-point boundary: cum may land a hair under total.
	return BaselineKey
}

func (s *Service) influence(distance float64) float64 {
	if distance >= s.cfg.MaxRadius {
		return 0
	}
	return math.Pow(1-distance/s.cfg.MaxRadius, s.cfg.FalloffExponent)
}

// EvictFarFrom drops cached macro-areas and lookup cells farther than
// maxDistance from the reference point, bounding cache memory as the player
// travels.
func (s *Service) EvictFarFrom(x, y, maxDistance float64) {
	p := spatial.Point{X: x, Y: y}

	s.mu.Lock()
	defer s.mu.Unlock()

	evictedAreas := 0
	for area := range s.areas {
		if p.DistanceTo(area.Center(s.cfg.AreaSize)) > maxDistance {
			delete(s.areas, area)
			evictedAreas++
		}
	}

	evictedCells := 0
	for cell := range s.cells {
		center := spatial.Point{
			X: float64(cell.X*s.cfg.CellSize) + float64(s.cfg.CellSize)/2,
			Y: float64(cell.Y*s.cfg.CellSize) + float64(s.cfg.CellSize)/2,
		}
		if p.DistanceTo(center) > maxDistance {
			delete(s.cells, cell)
			evictedCells++
		}
	}

	if evictedAreas > 0 || evictedCells > 0 {
		s.logger.Debug("Region caches evicted", "areas", evictedAreas, "cells", evictedCells)
	}
}
