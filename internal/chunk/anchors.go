package chunk

import (
	"math"

	"starscape-server/internal/region"
	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

// Anchors are phase-one probes: the presence roll and raw position a chunk
// would produce for an object, derived solely from that chunk's own seed.
// Neighbor-aware decisions (placement scoring, black-hole clearance) consult
// anchors instead of fully generated chunks, so the outcome never depends on
// which chunks happen to be generated or in what order.

const anchorRadius = 2

func (s *Service) regionInfoFor(c spatial.ChunkCoord) region.Info {
	center := c.Center(s.cfg.Size)
	return s.regions.RegionAt(center.X, center.Y)
}

// systemAnchor returns the star system presence roll and first candidate
// position for a chunk. The full generator consumes the identical stream
// prefix, so the anchor matches its roll exactly. A chunk that rolls a
// black hole hosts no star system: the hole takes the chunk's center.
func (s *Service) systemAnchor(c spatial.ChunkCoord) (spatial.Point, bool) {
	if _, ok := s.blackHoleAnchor(c); ok {
		return spatial.Point{}, false
	}
	info := s.regionInfoFor(c)
	r := rng.New(s.chunkSeed(c, saltSystem))
	if r.Next() >= systemChance(info) {
		return spatial.Point{}, false
	}
	return s.systemCandidate(r, c), true
}

// systemPlacement replays the full scored placement for a chunk's star
// system and returns its final position. Placement consumes only the chunk's
// own stream and neighbor anchors, so the replay is exact and bounded.
func (s *Service) systemPlacement(c spatial.ChunkCoord) (spatial.Point, bool) {
	if _, ok := s.blackHoleAnchor(c); ok {
		return spatial.Point{}, false
	}
	info := s.regionInfoFor(c)
	r := rng.New(s.chunkSeed(c, saltSystem))
	if r.Next() >= systemChance(info) {
		return spatial.Point{}, false
	}
	return s.placeSystem(r, c), true
}

func systemChance(info region.Info) float64 {
	return math.Min(systemBaseChance*info.Definition.Multipliers.StarSystem, systemMaxChance)
}

func (s *Service) systemCandidate(r *rng.ChunkRandom, c spatial.ChunkCoord) spatial.Point {
	ox, oy := c.Origin(s.cfg.Size)
	span := float64(s.cfg.Size) - 2*systemEdgeMargin
	return spatial.Point{
		X: float64(ox) + systemEdgeMargin + r.Next()*span,
		Y: float64(oy) + systemEdgeMargin + r.Next()*span,
	}
}

// blackHoleAnchor returns whether a chunk's own seed places a black hole,
// before any clearance rules are applied. Black holes always sit at the
// chunk center.
func (s *Service) blackHoleAnchor(c spatial.ChunkCoord) (spatial.Point, bool) {
	info := s.regionInfoFor(c)
	r := rng.New(s.chunkSeed(c, saltBlackHole))
	if r.Next() >= blackHoleBaseChance*info.Definition.Multipliers.BlackHole {
		return spatial.Point{}, false
	}
	return c.Center(s.cfg.Size), true
}

// blackHoleObstacles collects neighbor black-hole anchors. System placement
// treats their clearance disks as forbidden. Only direct neighbors can reach
// a candidate inside this chunk's margin box within the clearance.
func (s *Service) blackHoleObstacles(c spatial.ChunkCoord) []spatial.Point {
	var holes []spatial.Point
	for _, n := range spatial.Neighborhood(c, 1) {
		if p, ok := s.blackHoleAnchor(n); ok {
			holes = append(holes, p)
		}
	}
	return holes
}

// placementObstacles collects the objects in the surrounding chunks a new
// star system should keep its distance from: neighbor system anchors and
// neighbor nebulae.
func (s *Service) placementObstacles(c spatial.ChunkCoord) []spatial.Point {
	var obstacles []spatial.Point
	for _, n := range spatial.Neighborhood(c, anchorRadius) {
		if p, ok := s.systemAnchor(n); ok {
			obstacles = append(obstacles, p)
		}
		for _, neb := range s.nebulaeFor(n, s.regionInfoFor(n)) {
			obstacles = append(obstacles, spatial.Point{X: neb.X, Y: neb.Y})
		}
	}
	return obstacles
}

// chunkPrecedes orders chunks row-major; the earlier chunk wins symmetric
// conflicts such as two black-hole anchors inside each other's clearance.
func chunkPrecedes(a, b spatial.ChunkCoord) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}
