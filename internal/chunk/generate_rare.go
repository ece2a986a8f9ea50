package chunk

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"starscape-server/internal/galaxy"
	"starscape-server/internal/region"
	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

// pairIDFor derives the shared wormhole pair id from the alpha chunk's
// coordinates, so regeneration of the chunk reproduces the same id.
func (s *Service) pairIDFor(c spatial.ChunkCoord) string {
	ox, oy := c.Origin(s.cfg.Size)
	h := rng.PositionHash(s.cfg.Seed, ox, oy) ^ saltWormhole
	return "WH-" + strings.ToUpper(strconv.FormatUint(uint64(h), 36))
}

// synthesizeBetas places the beta endpoints the pair registry implies fall
// inside this chunk. This is what keeps pairing closed when the twin chunk
// is generated independently, in a later session, or after eviction.
func (s *Service) synthesizeBetas(ch *galaxy.Chunk, c spatial.ChunkCoord) {
	var due []PairRecord
	for _, pr := range s.pairs {
		beta := spatial.Point{X: pr.BetaX, Y: pr.BetaY}
		if spatial.ChunkOf(beta, s.cfg.Size) == c {
			due = append(due, pr)
		}
	}
	// map iteration order is random; sort so chunk content is reproducible
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })

	for _, pr := range due {
		if hasPairEndpoint(ch, pr.ID) {
			continue
		}
		ch.Wormholes = append(ch.Wormholes, s.betaEndpoint(c, pr))
	}
}

// betaEndpoint materializes the passive end of a pair at its recorded
// coordinates. The registry is the source of truth for endpoint positions.
func (s *Service) betaEndpoint(_ spatial.ChunkCoord, pr PairRecord) *galaxy.Wormhole {
	return &galaxy.Wormhole{
		X:           pr.BetaX,
		Y:           pr.BetaY,
		PairID:      pr.ID,
		Designation: galaxy.DesignationBeta,
		TwinX:       pr.AlphaX,
		TwinY:       pr.AlphaY,
	}
}

// generateWormhole rolls the alpha endpoint for this chunk. A successful
// roll picks a local position away from the star system, then a twin
// position 50k-200k units away at a random bearing. The returned records
// are new pairs whose twin chunks the caller must force-generate.
func (s *Service) generateWormhole(ch *galaxy.Chunk, c spatial.ChunkCoord, info region.Info, peek bool) []PairRecord {
	r := rng.New(s.chunkSeed(c, saltWormhole))
	if r.Next() >= wormholeBaseChance*info.Definition.Multipliers.Wormhole {
		return nil
	}

	id := s.pairIDFor(c)
	if hasPairEndpoint(ch, id) {
		return nil
	}

	ox, oy := c.Origin(s.cfg.Size)
	span := float64(s.cfg.Size) - 2*wormholeEdgeMargin
	p := spatial.Point{
		X: float64(ox) + wormholeEdgeMargin + r.Next()*span,
		Y: float64(oy) + wormholeEdgeMargin + r.Next()*span,
	}
	p = pushedClearOfSystems(ch, p)

	angle := r.NextFloat(0, 2*math.Pi)
	dist := r.NextFloat(wormholePairMinDistance, wormholePairMaxDistance)
	center := c.Center(s.cfg.Size)
	twin := spatial.Point{
		X: center.X + math.Cos(angle)*dist,
		Y: center.Y + math.Sin(angle)*dist,
	}

	if pr, ok := s.pairs[id]; ok {
		// Regenerated alpha chunk: the registry already records this pair,
		// reuse its endpoints instead of re-registering.
		ch.Wormholes = append(ch.Wormholes, &galaxy.Wormhole{
			X:           pr.AlphaX,
			Y:           pr.AlphaY,
			PairID:      id,
			Designation: galaxy.DesignationAlpha,
			TwinX:       pr.BetaX,
			TwinY:       pr.BetaY,
		})
		return nil
	}

	ch.Wormholes = append(ch.Wormholes, &galaxy.Wormhole{
		X:           p.X,
		Y:           p.Y,
		PairID:      id,
		Designation: galaxy.DesignationAlpha,
		TwinX:       twin.X,
		TwinY:       twin.Y,
	})

	pr := PairRecord{ID: id, AlphaX: p.X, AlphaY: p.Y, BetaX: twin.X, BetaY: twin.Y}
	if peek {
		return nil
	}
	s.pairs[id] = pr
	return []PairRecord{pr}
}

// pushedClearOfSystems moves a point radially away from any star system it
// landed too close to.
func pushedClearOfSystems(ch *galaxy.Chunk, p spatial.Point) spatial.Point {
	for _, sys := range ch.Systems {
		sp := spatial.Point{X: sys.X, Y: sys.Y}
		d := p.DistanceTo(sp)
		if d >= wormholeMinSystemDistance {
			continue
		}
		if d == 0 {
			p = spatial.Point{X: sp.X + wormholeMinSystemDistance, Y: sp.Y}
			continue
		}
		scale := wormholeMinSystemDistance / d
		p = spatial.Point{X: sp.X + (p.X-sp.X)*scale, Y: sp.Y + (p.Y-sp.Y)*scale}
	}
	return p
}

// generateBlackHole rolls the chunk-center black hole, subject to clearance
// against neighbor star systems and neighbor black-hole anchors. The roll
// that places a hole also suppresses the chunk's own star system, so only
// neighbors can conflict. Anchor-vs-anchor conflicts resolve in favor of
// the row-major earlier chunk, identically from both sides.
func (s *Service) generateBlackHole(ch *galaxy.Chunk, c spatial.ChunkCoord, info region.Info) {
	r := rng.New(s.chunkSeed(c, saltBlackHole))
	if r.Next() >= blackHoleBaseChance*info.Definition.Multipliers.BlackHole {
		return
	}

	center := c.Center(s.cfg.Size)
	for _, n := range spatial.Neighborhood(c, anchorRadius) {
		// The clearance rule binds against final placements, so the neighbor's
		// scored placement is replayed rather than probing its first candidate.
		if p, ok := s.systemPlacement(n); ok && center.DistanceTo(p) < blackHoleStarClearance {
			return
		}
		if q, ok := s.blackHoleAnchor(n); ok && center.DistanceTo(q) < blackHoleClearance && chunkPrecedes(n, c) {
			return
		}
	}

	def := galaxy.PickBlackHoleType(r)
	ch.BlackHoles = append(ch.BlackHoles, &galaxy.BlackHole{
		X:      center.X,
		Y:      center.Y,
		Type:   def.Key,
		Radius: r.NextFloat(def.MinRadius, def.MaxRadius),
	})
}

// mergeDebugObjects appends queued pre-placed objects. The queue is kept so
// regeneration after eviction re-merges identically.
func (s *Service) mergeDebugObjects(ch *galaxy.Chunk, c spatial.ChunkCoord) {
	for _, obj := range s.debug[c] {
		s.injectDebugObjectLocked(ch, obj)
	}
}

func (s *Service) injectDebugObjectLocked(ch *galaxy.Chunk, obj DebugObject) {
	switch obj.Kind {
	case galaxy.KindWormhole:
		id := obj.PairID
		if id == "" {
			id = s.pairIDFor(spatial.ChunkOf(spatial.Point{X: obj.X, Y: obj.Y}, s.cfg.Size)) + "-DBG"
		}
		if hasPairEndpoint(ch, id) {
			return
		}
		designation := obj.Designation
		if designation == "" {
			designation = galaxy.DesignationAlpha
		}
		ch.Wormholes = append(ch.Wormholes, &galaxy.Wormhole{
			X:           obj.X,
			Y:           obj.Y,
			PairID:      id,
			Designation: designation,
			TwinX:       obj.TwinX,
			TwinY:       obj.TwinY,
		})
		if designation == galaxy.DesignationAlpha && (obj.TwinX != 0 || obj.TwinY != 0) {
			if _, ok := s.pairs[id]; !ok {
				s.pairs[id] = PairRecord{ID: id, AlphaX: obj.X, AlphaY: obj.Y, BetaX: obj.TwinX, BetaY: obj.TwinY}
			}
		}
	case galaxy.KindBlackHole:
		key := obj.Type
		if key == "" {
			key = galaxy.BlackHoleTypes[0].Key
		}
		var def galaxy.BlackHoleTypeDef
		for _, d := range galaxy.BlackHoleTypes {
			if d.Key == key {
				def = d
				break
			}
		}
		ch.BlackHoles = append(ch.BlackHoles, &galaxy.BlackHole{
			X:      obj.X,
			Y:      obj.Y,
			Type:   key,
			Radius: (def.MinRadius + def.MaxRadius) / 2,
		})
	}
}
