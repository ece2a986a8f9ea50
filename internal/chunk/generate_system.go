package chunk

import (
	"math"

	"starscape-server/internal/galaxy"
	"starscape-server/internal/region"
	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

const (
	maxOrbitRadius     = 1400.0
	orbitSpeedScale    = 8.0
	moonSpeedScale     = 8.0
	moonOrbitMin       = 18.0
	moonOrbitMax       = 45.0
	companionOffsetMin = 80.0
	companionOffsetMax = 200.0
)

// orbitTiers gives each planet ordinal its orbital distance range; planets
// beyond the last tier reuse it.
var orbitTiers = [][2]float64{
	{120, 180},
	{200, 300},
	{300, 460},
	{460, 650},
	{650, 900},
	{900, 1200},
}

func (s *Service) generateSystem(ch *galaxy.Chunk, c spatial.ChunkCoord, info region.Info) {
	// A black hole claims the whole chunk; its roll suppresses the star
	// system, mirroring systemAnchor.
	if _, ok := s.blackHoleAnchor(c); ok {
		return
	}

	r := rng.New(s.chunkSeed(c, saltSystem))
	if r.Next() >= systemChance(info) {
		return
	}

	pos := s.placeSystem(r, c)
	sys := &galaxy.StarSystem{X: pos.X, Y: pos.Y}

	primary := galaxy.PickStarType(r)
	sys.Star = &galaxy.Star{
		X:      pos.X,
		Y:      pos.Y,
		Type:   primary.Key,
		Radius: r.NextFloat(primary.MinRadius, primary.MaxRadius),
	}

	if r.Next() < companionChance {
		compDef := galaxy.PickCompanionType(r, primary.Key)
		offset := r.NextFloat(companionOffsetMin, companionOffsetMax)
		angle := r.NextFloat(0, 2*math.Pi)
		sys.Companion = &galaxy.Star{
			X:           pos.X + math.Cos(angle)*offset,
			Y:           pos.Y + math.Sin(angle)*offset,
			Type:        compDef.Key,
			Radius:      r.NextFloat(compDef.MinRadius, compDef.MaxRadius) * 0.6,
			IsCompanion: true,
		}
	}

	s.generatePlanets(r, sys, primary)
	s.generateComets(r, sys)

	ch.Systems = append(ch.Systems, sys)
}

// placeSystem scores a fixed number of candidate positions against the
// surrounding chunks' anchors and keeps the best. The candidate count is
// constant so the random stream consumed here never varies.
func (s *Service) placeSystem(r *rng.ChunkRandom, c spatial.ChunkCoord) spatial.Point {
	obstacles := s.placementObstacles(c)
	holes := s.blackHoleObstacles(c)

	best := s.systemCandidate(r, c)
	bestScore := placementScore(best, obstacles, holes)
	for i := 1; i < systemCandidates; i++ {
		p := s.systemCandidate(r, c)
		if score := placementScore(p, obstacles, holes); score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}

// placementScore starts at 1.0 and penalizes proximity: sharply inside the
// hard minimum, gently inside the preferred distance. A candidate inside a
// neighbor black hole's clearance disk is effectively disqualified; it can
// only win when every candidate is inside one.
func placementScore(p spatial.Point, obstacles, holes []spatial.Point) float64 {
	score := 1.0
	for _, ob := range obstacles {
		d := p.DistanceTo(ob)
		switch {
		case d < systemMinDistance:
			score -= 10 * (1 - d/systemMinDistance)
		case d < systemPrefDistance:
			score -= (systemPrefDistance - d) / systemPrefDistance
		}
	}
	for _, h := range holes {
		if p.DistanceTo(h) < blackHoleStarClearance {
			score -= 50
		}
	}
	return score
}

func planetCount(r *rng.ChunkRandom) int {
	roll := r.Next()
	switch {
	case roll < 0.15:
		return 0
	case roll < 0.40:
		return 1
	case roll < 0.65:
		return 2
	case roll < 0.82:
		return 3
	case roll < 0.93:
		return 4
	case roll < 0.98:
		return 5
	default:
		return 6
	}
}

func (s *Service) generatePlanets(r *rng.ChunkRandom, sys *galaxy.StarSystem, primary galaxy.StarTypeDef) {
	count := planetCount(r)
	for i := 0; i < count; i++ {
		tier := orbitTiers[min(i, len(orbitTiers)-1)]
		dist := math.Min(r.NextFloat(tier[0], tier[1]), maxOrbitRadius)
		angle := r.NextFloat(0, 2*math.Pi)
		speedFactor := r.NextFloat(0.8, 1.25)

		band := min(int(dist/maxOrbitRadius*4), 3)
		def := galaxy.PickPlanetType(r, band, primary.Key)

		p := &galaxy.Planet{
			X:           sys.X + math.Cos(angle)*dist,
			Y:           sys.Y + math.Sin(angle)*dist,
			Type:        def.Key,
			Radius:      r.NextFloat(def.MinRadius, def.MaxRadius),
			Index:       i,
			OrbitRadius: dist,
			OrbitAngle:  angle,
			OrbitSpeed:  orbitSpeedScale / math.Pow(dist, 1.5) * speedFactor,
		}

		if def.MaxMoons > 0 && r.Next() < def.MoonChance {
			s.generateMoons(r, p)
		}

		sys.Planets = append(sys.Planets, p)
	}
}

func (s *Service) generateMoons(r *rng.ChunkRandom, p *galaxy.Planet) {
	def := galaxy.PlanetTypeFor(p.Type)
	count := r.NextInt(1, def.MaxMoons)
	for j := 0; j < count; j++ {
		dist := r.NextFloat(moonOrbitMin, moonOrbitMax)
		angle := r.NextFloat(0, 2*math.Pi)
		speedFactor := r.NextFloat(0.8, 1.2)
		p.Moons = append(p.Moons, &galaxy.Moon{
			X:           p.X + math.Cos(angle)*dist,
			Y:           p.Y + math.Sin(angle)*dist,
			Radius:      r.NextFloat(2, 5),
			Index:       j,
			PlanetIndex: p.Index,
			OrbitRadius: dist,
			OrbitAngle:  angle,
			OrbitSpeed:  moonSpeedScale / math.Pow(dist, 1.5) * speedFactor,
		})
	}
}

func (s *Service) generateComets(r *rng.ChunkRandom, sys *galaxy.StarSystem) {
	if r.Next() >= cometChance {
		return
	}
	count := r.NextInt(1, 3)
	for i := 0; i < count; i++ {
		a := r.NextFloat(300, 900)
		e := r.NextFloat(0.6, 0.95)
		sys.Comets = append(sys.Comets, &galaxy.Comet{
			SemiMajorAxis: a,
			Eccentricity:  e,
			Period:        r.NextFloat(200, 1200),
			ArgPeriapsis:  r.NextFloat(0, 2*math.Pi),
			MeanAnomaly:   r.NextFloat(0, 2*math.Pi),
			Perihelion:    a * (1 - e),
			Aphelion:      a * (1 + e),
		})
	}
}
