package chunk

import (
	"starscape-server/internal/galaxy"
	"starscape-server/internal/region"
	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

// Per-category salts keep the random streams of the generation steps
// independent: consuming more values in one step never shifts another.
const (
	saltBackground uint32 = 0x1C5A9D3B
	saltSystem     uint32 = 0x2E90F6A1
	saltNebula     uint32 = 0x3B7D52C9
	saltAsteroid   uint32 = 0x4D218E57
	saltWormhole   uint32 = 0x5F43A18D
	saltBlackHole  uint32 = 0x6A95C2F3
)

const (
	backgroundStarsMin = 20
	backgroundStarsMax = 45

	systemBaseChance   = 0.35
	systemMaxChance    = 0.95
	systemEdgeMargin   = 150.0
	systemCandidates   = 5
	systemMinDistance  = 600.0
	systemPrefDistance = 1500.0
	companionChance    = 0.15
	cometChance        = 0.30

	nebulaBaseChance   = 0.22
	nebulaSecondChance = 0.06
	nebulaEdgeMargin   = 300.0

	asteroidBaseChance        = 0.30
	asteroidEdgeMargin        = 250.0
	asteroidMinSystemDistance = 500.0

	wormholeBaseChance        = 0.0008
	wormholeEdgeMargin        = 200.0
	wormholeMinSystemDistance = 200.0
	wormholePairMinDistance   = 50000.0
	wormholePairMaxDistance   = 200000.0

	blackHoleBaseChance    = 0.0005
	blackHoleStarClearance = 2500.0
	blackHoleClearance     = 5000.0
)

// generate builds a chunk's full content from the universe seed and the
// chunk coordinates. In peek mode the pair registry is read but never
// written, so transient reconstruction of evicted chunks has no side
// effects. Returns the pair records created by a new alpha endpoint, whose
// twin chunks the caller must ensure.
func (s *Service) generate(c spatial.ChunkCoord, peek bool) (*galaxy.Chunk, []PairRecord) {
	info := s.regionInfoFor(c)

	ch := &galaxy.Chunk{Coord: c}
	s.generateBackground(ch, c)
	s.generateSystem(ch, c, info)
	ch.Nebulae = s.nebulaeFor(c, info)
	s.generateAsteroidFields(ch, c, info)
	s.synthesizeBetas(ch, c)
	newPairs := s.generateWormhole(ch, c, info, peek)
	s.generateBlackHole(ch, c, info)
	s.mergeDebugObjects(ch, c)

	if !peek {
		s.logger.Debug("Chunk generated",
			"chunk_x", c.X,
			"chunk_y", c.Y,
			"region", info.Definition.Key,
			"systems", len(ch.Systems),
			"nebulae", len(ch.Nebulae),
			"wormholes", len(ch.Wormholes),
			"black_holes", len(ch.BlackHoles),
		)
	}
	return ch, newPairs
}

func (s *Service) generateBackground(ch *galaxy.Chunk, c spatial.ChunkCoord) {
	r := rng.New(s.chunkSeed(c, saltBackground))
	ox, oy := c.Origin(s.cfg.Size)
	size := float64(s.cfg.Size)

	count := r.NextInt(backgroundStarsMin, backgroundStarsMax)
	ch.BackgroundStars = make([]galaxy.BackgroundStar, 0, count)
	for i := 0; i < count; i++ {
		ch.BackgroundStars = append(ch.BackgroundStars, galaxy.BackgroundStar{
			X:          float64(ox) + r.Next()*size,
			Y:          float64(oy) + r.Next()*size,
			Brightness: r.NextFloat(0.3, 1.0),
			Size:       r.NextFloat(0.5, 2.2),
			Color:      rng.Choice(r, galaxy.BackgroundStarColors),
		})
	}
}

// nebulaeFor is pure per chunk, so it doubles as the nebula anchor probe
// for neighbor-aware placement scoring.
func (s *Service) nebulaeFor(c spatial.ChunkCoord, info region.Info) []*galaxy.Nebula {
	r := rng.New(s.chunkSeed(c, saltNebula))
	mult := info.Definition.Multipliers.Nebula

	var nebulae []*galaxy.Nebula
	if r.Next() < nebulaBaseChance*mult {
		nebulae = append(nebulae, s.rollNebula(r, c))
		if r.Next() < nebulaSecondChance*mult {
			nebulae = append(nebulae, s.rollNebula(r, c))
		}
	}
	return nebulae
}

func (s *Service) rollNebula(r *rng.ChunkRandom, c spatial.ChunkCoord) *galaxy.Nebula {
	ox, oy := c.Origin(s.cfg.Size)
	span := float64(s.cfg.Size) - 2*nebulaEdgeMargin
	def := galaxy.PickNebulaType(r)
	return &galaxy.Nebula{
		X:      float64(ox) + nebulaEdgeMargin + r.Next()*span,
		Y:      float64(oy) + nebulaEdgeMargin + r.Next()*span,
		Type:   def.Key,
		Radius: r.NextFloat(220, 420),
	}
}

func (s *Service) generateAsteroidFields(ch *galaxy.Chunk, c spatial.ChunkCoord, info region.Info) {
	r := rng.New(s.chunkSeed(c, saltAsteroid))
	if r.Next() >= asteroidBaseChance*info.Definition.Multipliers.AsteroidField {
		return
	}

	ox, oy := c.Origin(s.cfg.Size)
	span := float64(s.cfg.Size) - 2*asteroidEdgeMargin

	count := r.NextInt(1, 2)
	for i := 0; i < count; i++ {
		// One retry when the roll lands on the local star system; a field
		// that misses twice is dropped rather than forced.
		for attempt := 0; attempt < 2; attempt++ {
			p := spatial.Point{
				X: float64(ox) + asteroidEdgeMargin + r.Next()*span,
				Y: float64(oy) + asteroidEdgeMargin + r.Next()*span,
			}
			if nearSystem(ch, p, asteroidMinSystemDistance) {
				continue
			}
			ch.AsteroidFields = append(ch.AsteroidFields, &galaxy.AsteroidField{
				X:      p.X,
				Y:      p.Y,
				Type:   rng.Choice(r, galaxy.AsteroidFieldTypes),
				Radius: r.NextFloat(160, 320),
			})
			break
		}
	}
}

func nearSystem(ch *galaxy.Chunk, p spatial.Point, minDistance float64) bool {
	for _, sys := range ch.Systems {
		if p.DistanceTo(spatial.Point{X: sys.X, Y: sys.Y}) < minDistance {
			return true
		}
	}
	return false
}
