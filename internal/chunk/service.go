// Package chunk owns the spatial partitioning of the universe: lazy
// generation of chunk content from hash-derived seeds, the active window
// around the player, eviction, aggregation, and the cross-chunk consistency
// machinery for wormhole pairs.
package chunk

import (
	"log/slog"
	"sort"
	"sync"

	"starscape-server/internal/galaxy"
	"starscape-server/internal/region"
	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

// Restorer re-applies discovery flags onto freshly generated chunks so
// regeneration never "undiscovers" anything. Implemented by the discovery
// service.
type Restorer interface {
	Restore(ch *galaxy.Chunk)
}

// PairRecord is the durable description of a wormhole pair: both endpoint
// coordinates plus the shared id. It outlives both owning chunks.
type PairRecord struct {
	ID     string  `json:"id"`
	AlphaX float64 `json:"alpha_x"`
	AlphaY float64 `json:"alpha_y"`
	BetaX  float64 `json:"beta_x"`
	BetaY  float64 `json:"beta_y"`
}

// DebugObject is an externally pre-placed rare object merged into its
// chunk's generation, for testing and tooling.
type DebugObject struct {
	Kind        galaxy.ObjectKind `json:"kind"`
	X           float64           `json:"x"`
	Y           float64           `json:"y"`
	Type        string            `json:"type,omitempty"`
	PairID      string            `json:"pair_id,omitempty"`
	Designation string            `json:"designation,omitempty"`
	TwinX       float64           `json:"twin_x,omitempty"`
	TwinY       float64           `json:"twin_y,omitempty"`
}

// Config carries the per-universe parameters of the chunk grid.
type Config struct {
	Seed       int64
	Size       int
	LoadRadius int
}

// Service is the chunk manager. All state behind the mutex: generation of
// two different chunks from concurrent callers shares the memoized caches,
// and generation of the same chunk is deduplicated by the chunks map.
type Service struct {
	cfg     Config
	regions *region.Service
	logger  *slog.Logger

	mu         sync.Mutex
	chunks     map[spatial.ChunkCoord]*galaxy.Chunk
	generating map[spatial.ChunkCoord]bool
	pairs      map[string]PairRecord
	debug      map[spatial.ChunkCoord][]DebugObject
	restorer   Restorer
}

func NewService(cfg Config, regions *region.Service, logger *slog.Logger) *Service {
	logger.Debug("Initializing chunk service",
		"chunk_size", cfg.Size,
		"load_radius", cfg.LoadRadius,
	)

	return &Service{
		cfg:        cfg,
		regions:    regions,
		logger:     logger,
		chunks:     make(map[spatial.ChunkCoord]*galaxy.Chunk),
		generating: make(map[spatial.ChunkCoord]bool),
		pairs:      make(map[string]PairRecord),
		debug:      make(map[spatial.ChunkCoord][]DebugObject),
	}
}

// SetRestorer wires the discovery service in after construction (the two
// services are built independently).
func (s *Service) SetRestorer(r Restorer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restorer = r
}

// RegisterPair seeds the pair registry, typically from persisted discovery
// records, so a chunk generated in a later session still synthesizes the
// beta endpoint a previously found alpha implies.
func (s *Service) RegisterPair(p PairRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairs[p.ID]; !ok {
		s.pairs[p.ID] = p
	}
}

// Pairs returns a snapshot of the pair registry, sorted by id.
func (s *Service) Pairs() []PairRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PairRecord, 0, len(s.pairs))
	for _, p := range s.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddDebugObjects queues pre-placed objects for merge into their chunks'
// generation. Objects whose chunk is already active are injected directly.
func (s *Service) AddDebugObjects(objs []DebugObject) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range objs {
		c := spatial.ChunkOf(spatial.Point{X: obj.X, Y: obj.Y}, s.cfg.Size)
		if ch, ok := s.chunks[c]; ok {
			s.injectDebugObjectLocked(ch, obj)
			continue
		}
		s.debug[c] = append(s.debug[c], obj)
	}
}

// GetChunk returns the active chunk, generating it on first demand.
// Re-requesting an active chunk returns the cached instance without
// regenerating.
func (s *Service) GetChunk(c spatial.ChunkCoord) *galaxy.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrGenerateLocked(c)
}

// ActiveChunks returns the active coordinate set, sorted row-major.
func (s *Service) ActiveChunks() []spatial.ChunkCoord {
	s.mu.Lock()
	defer s.mu.Unlock()

	coords := make([]spatial.ChunkCoord, 0, len(s.chunks))
	for c := range s.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	return coords
}

// ActiveCount returns the number of active chunks.
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// RequiredChunksAround returns the (2r+1)^2 window of chunk coordinates
// centered on the point's chunk.
func (s *Service) RequiredChunksAround(p spatial.Point) []spatial.ChunkCoord {
	return spatial.Window(spatial.ChunkOf(p, s.cfg.Size), s.cfg.LoadRadius)
}

// UpdateActive generates every chunk the reference point requires, then
// evicts active chunks outside the window. Eviction strictly follows
// generation so the active set never has a transient gap.
func (s *Service) UpdateActive(p spatial.Point) (generated, evicted int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	required := s.RequiredChunksAround(p)
	requiredSet := make(map[spatial.ChunkCoord]bool, len(required))
	for _, c := range required {
		requiredSet[c] = true
		if _, ok := s.chunks[c]; !ok {
			s.getOrGenerateLocked(c)
			generated++
		}
	}

	for c := range s.chunks {
		if !requiredSet[c] {
			delete(s.chunks, c)
			evicted++
		}
	}

	if generated > 0 || evicted > 0 {
		s.logger.Debug("Active chunk window updated",
			"generated", generated,
			"evicted", evicted,
			"active", len(s.chunks),
		)
	}
	return generated, evicted
}

// Aggregate is the flattened read-only view of all active chunks, the
// renderer boundary's input.
type Aggregate struct {
	BackgroundStars []galaxy.BackgroundStar `json:"background_stars"`
	Systems         []*galaxy.StarSystem    `json:"systems"`
	Nebulae         []*galaxy.Nebula        `json:"nebulae"`
	AsteroidFields  []*galaxy.AsteroidField `json:"asteroid_fields"`
	Wormholes       []*galaxy.Wormhole      `json:"wormholes"`
	BlackHoles      []*galaxy.BlackHole     `json:"black_holes"`
}

// AggregateActive flattens all active chunks' object lists into per-category
// collections, in deterministic chunk order.
func (s *Service) AggregateActive() Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()

	coords := make([]spatial.ChunkCoord, 0, len(s.chunks))
	for c := range s.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})

	var agg Aggregate
	for _, c := range coords {
		ch, ok := s.chunks[c]
		if !ok {
			continue
		}
		agg.BackgroundStars = append(agg.BackgroundStars, ch.BackgroundStars...)
		agg.Systems = append(agg.Systems, ch.Systems...)
		agg.Nebulae = append(agg.Nebulae, ch.Nebulae...)
		agg.AsteroidFields = append(agg.AsteroidFields, ch.AsteroidFields...)
		agg.Wormholes = append(agg.Wormholes, ch.Wormholes...)
		agg.BlackHoles = append(agg.BlackHoles, ch.BlackHoles...)
	}
	return agg
}

func (s *Service) getOrGenerateLocked(c spatial.ChunkCoord) *galaxy.Chunk {
	if ch, ok := s.chunks[c]; ok {
		return ch
	}
	if s.generating[c] {
		// Re-entrant request during a twin force-generation chain; the
		// caller only needs the chunk to exist afterwards.
		return nil
	}

	s.generating[c] = true
	ch, newPairs := s.generate(c, false)
	delete(s.generating, c)

	s.chunks[c] = ch
	if s.restorer != nil {
		s.restorer.Restore(ch)
	}

	// Force-generate twin chunks for any alpha endpoints created above, so
	// pairing closure holds without waiting for the player to travel there.
	for _, pr := range newPairs {
		s.ensureTwinLocked(pr)
	}

	return ch
}

// ensureTwinLocked guarantees the beta endpoint of a freshly created pair
// exists, either by injecting it into an already-active twin chunk or by
// generating that chunk (whose beta pass reads the registry).
func (s *Service) ensureTwinLocked(pr PairRecord) {
	twinChunk := spatial.ChunkOf(spatial.Point{X: pr.BetaX, Y: pr.BetaY}, s.cfg.Size)

	if ch, ok := s.chunks[twinChunk]; ok {
		if !hasPairEndpoint(ch, pr.ID) {
			ch.Wormholes = append(ch.Wormholes, s.betaEndpoint(twinChunk, pr))
			if s.restorer != nil {
				s.restorer.Restore(ch)
			}
		}
		return
	}

	s.getOrGenerateLocked(twinChunk)
}

func hasPairEndpoint(ch *galaxy.Chunk, pairID string) bool {
	for _, w := range ch.Wormholes {
		if w.PairID == pairID {
			return true
		}
	}
	return false
}

// FindLive resolves an object identity against the active chunks. The
// object's coordinates can sit just past the owning chunk's boundary (a
// companion star's offset, a wormhole pushed clear of a system), so the
// surrounding chunks are searched too.
func (s *Service) FindLive(id galaxy.ObjectID) (LiveObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.candidateChunks(id) {
		ch, ok := s.chunks[c]
		if !ok {
			continue
		}
		if lo, ok := findInChunk(ch, id); ok {
			return lo, true
		}
	}
	return LiveObject{}, false
}

func (s *Service) candidateChunks(id galaxy.ObjectID) []spatial.ChunkCoord {
	base := s.chunkForID(id)
	return append([]spatial.ChunkCoord{base}, spatial.Neighborhood(base, 1)...)
}

// SetDiscovered flips the discovery flag on a live object. Returns false
// when the object's chunk is not active or the identity resolves to nothing.
func (s *Service) SetDiscovered(id galaxy.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.candidateChunks(id) {
		ch, ok := s.chunks[c]
		if !ok {
			continue
		}
		if markInChunk(ch, id) {
			return true
		}
	}
	return false
}

func markInChunk(ch *galaxy.Chunk, id galaxy.ObjectID) bool {
	switch id.Kind {
	case galaxy.KindStar:
		for _, sys := range ch.Systems {
			if galaxy.StarID(sys.Star) == id {
				sys.Star.Discovered = true
				return true
			}
			if sys.Companion != nil && galaxy.StarID(sys.Companion) == id {
				sys.Companion.Discovered = true
				return true
			}
		}
	case galaxy.KindPlanet:
		for _, sys := range ch.Systems {
			for _, p := range sys.Planets {
				if galaxy.PlanetID(sys, p) == id {
					p.Discovered = true
					return true
				}
			}
		}
	case galaxy.KindMoon:
		for _, sys := range ch.Systems {
			for _, p := range sys.Planets {
				for _, m := range p.Moons {
					if galaxy.MoonID(sys, m) == id {
						m.Discovered = true
						return true
					}
				}
			}
		}
	case galaxy.KindNebula:
		for _, n := range ch.Nebulae {
			if galaxy.NebulaID(n) == id {
				n.Discovered = true
				return true
			}
		}
	case galaxy.KindAsteroidField:
		for _, f := range ch.AsteroidFields {
			if galaxy.AsteroidFieldID(f) == id {
				f.Discovered = true
				return true
			}
		}
	case galaxy.KindWormhole:
		for _, w := range ch.Wormholes {
			if galaxy.WormholeID(w) == id {
				w.Discovered = true
				return true
			}
		}
	case galaxy.KindBlackHole:
		for _, b := range ch.BlackHoles {
			if galaxy.BlackHoleID(b) == id {
				b.Discovered = true
				return true
			}
		}
	}
	return false
}

// PeekObject reconstructs an object whose chunk may be evicted by
// regenerating that chunk's content transiently, without activating it or
// producing pair-registry side effects. Generation is a pure function of
// seed and coordinates, so the reconstruction is exact.
func (s *Service) PeekObject(id galaxy.ObjectID) (LiveObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.candidateChunks(id) {
		ch, ok := s.chunks[c]
		if !ok {
			ch, _ = s.generate(c, true)
		}
		if lo, ok := findInChunk(ch, id); ok {
			return lo, true
		}
	}
	return LiveObject{}, false
}

// LiveObject is the denormalized view of one resolved object.
type LiveObject struct {
	ID          galaxy.ObjectID
	X           float64
	Y           float64
	TypeName    string
	PairID      string
	Designation string
	TwinX       float64
	TwinY       float64
}

func (s *Service) chunkForID(id galaxy.ObjectID) spatial.ChunkCoord {
	return spatial.ChunkOf(spatial.Point{X: float64(id.X), Y: float64(id.Y)}, s.cfg.Size)
}

func findInChunk(ch *galaxy.Chunk, id galaxy.ObjectID) (LiveObject, bool) {
	switch id.Kind {
	case galaxy.KindStar:
		for _, sys := range ch.Systems {
			if galaxy.StarID(sys.Star) == id {
				return LiveObject{ID: id, X: sys.Star.X, Y: sys.Star.Y, TypeName: galaxy.StarTypeFor(sys.Star.Type).Name}, true
			}
			if sys.Companion != nil && galaxy.StarID(sys.Companion) == id {
				return LiveObject{ID: id, X: sys.Companion.X, Y: sys.Companion.Y, TypeName: galaxy.StarTypeFor(sys.Companion.Type).Name}, true
			}
		}
	case galaxy.KindPlanet:
		for _, sys := range ch.Systems {
			for _, p := range sys.Planets {
				if galaxy.PlanetID(sys, p) == id {
					return LiveObject{ID: id, X: p.X, Y: p.Y, TypeName: galaxy.PlanetTypeFor(p.Type).Name}, true
				}
			}
		}
	case galaxy.KindMoon:
		for _, sys := range ch.Systems {
			for _, p := range sys.Planets {
				for _, m := range p.Moons {
					if galaxy.MoonID(sys, m) == id {
						return LiveObject{ID: id, X: m.X, Y: m.Y, TypeName: "Moon"}, true
					}
				}
			}
		}
	case galaxy.KindNebula:
		for _, n := range ch.Nebulae {
			if galaxy.NebulaID(n) == id {
				return LiveObject{ID: id, X: n.X, Y: n.Y, TypeName: galaxy.NebulaTypeFor(n.Type).Name}, true
			}
		}
	case galaxy.KindAsteroidField:
		for _, f := range ch.AsteroidFields {
			if galaxy.AsteroidFieldID(f) == id {
				return LiveObject{ID: id, X: f.X, Y: f.Y, TypeName: f.Type}, true
			}
		}
	case galaxy.KindWormhole:
		for _, w := range ch.Wormholes {
			if galaxy.WormholeID(w) == id {
				return LiveObject{
					ID: id, X: w.X, Y: w.Y, TypeName: "Wormhole",
					PairID: w.PairID, Designation: w.Designation,
					TwinX: w.TwinX, TwinY: w.TwinY,
				}, true
			}
		}
	case galaxy.KindBlackHole:
		for _, b := range ch.BlackHoles {
			if galaxy.BlackHoleID(b) == id {
				return LiveObject{ID: id, X: b.X, Y: b.Y, TypeName: typeNameForBlackHole(b.Type)}, true
			}
		}
	}
	return LiveObject{}, false
}

func typeNameForBlackHole(key string) string {
	for _, d := range galaxy.BlackHoleTypes {
		if d.Key == key {
			return d.Name
		}
	}
	return "Black Hole"
}

func (s *Service) chunkSeed(c spatial.ChunkCoord, salt uint32) int64 {
	ox, oy := c.Origin(s.cfg.Size)
	return int64(rng.PositionHash(s.cfg.Seed, ox, oy) ^ salt)
}
