package universe

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"starscape-server/internal/chunk"
	"starscape-server/internal/discovery"
	"starscape-server/internal/galaxy"
	"starscape-server/internal/parallax"
	"starscape-server/internal/region"
	"starscape-server/internal/shared/config"
	"starscape-server/internal/shared/database"
	"starscape-server/internal/shared/errors"
	"starscape-server/internal/shared/redis"
	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

const defaultViewSize = 4000.0

// Service composes the generation stack for one universe seed and exposes
// the operations the HTTP layer calls. Switching seeds rebuilds the whole
// stack behind the mutex; discovery history is scoped per seed and loaded
// from the store on switch.
type Service struct {
	cfg    config.UniverseConfig
	db     *database.DB
	cache  *redis.Client
	logger *slog.Logger

	mu       sync.Mutex
	seedText string
	seed     int64
	regions  *region.Service
	chunks   *chunk.Service
	disc     *discovery.Service
	par      *parallax.Service
}

func NewService(cfg config.UniverseConfig, db *database.DB, cache *redis.Client, logger *slog.Logger) *Service {
	s := &Service{
		cfg:    cfg,
		db:     db,
		cache:  cache,
		logger: logger,
	}

	seedText := cfg.Seed
	if seedText == "" {
		seedText = fmt.Sprintf("%d", rng.RandomSeed())
		logger.Info("No seed configured, generated one", "seed", seedText)
	}
	s.buildWorldLocked(seedText)
	return s
}

// buildWorldLocked constructs the full generation stack for a seed. Callers
// hold s.mu (or are the constructor).
func (s *Service) buildWorldLocked(seedText string) {
	seed := rng.SeedFromString(seedText)
	logger := s.logger.With("seed", seedText)

	regionCfg := region.DefaultConfig()
	regionCfg.AreaSize = s.cfg.MacroAreaSize
	regionCfg.MaxRadius = s.cfg.RegionRadius

	s.seedText = seedText
	s.seed = seed
	s.regions = region.NewService(seed, regionCfg, logger)
	s.chunks = chunk.NewService(chunk.Config{
		Seed:       seed,
		Size:       s.cfg.ChunkSize,
		LoadRadius: s.cfg.LoadRadius,
	}, s.regions, logger)
	var repo *discovery.Repository
	if s.db != nil {
		repo = discovery.NewRepository(s.db, logger)
	}
	s.disc = discovery.NewService(seedText, repo, s.cache, logger)
	s.par = parallax.NewService(seed, logger)
	s.chunks.SetRestorer(s.disc)

	logger.Info("Universe initialized", "numeric_seed", seed)
}

// Bootstrap loads the persisted discovery history for the current seed and
// re-seeds the wormhole pair registry from it.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bootstrapLocked(ctx)
}

func (s *Service) bootstrapLocked(ctx context.Context) error {
	pairs, err := s.disc.LoadPersisted(ctx)
	if err != nil {
		return fmt.Errorf("failed to load discovery history: %w", err)
	}
	for _, pr := range pairs {
		s.chunks.RegisterPair(pr)
	}
	return nil
}

func (s *Service) Seed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedText
}

// SetSeed tears down the current world and builds one for the new seed,
// loading that seed's discovery history.
func (s *Service) SetSeed(ctx context.Context, seedText string) error {
	if seedText == "" {
		return errors.Validation("seed must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Switching universe seed", "from", s.seedText, "to", seedText)
	s.buildWorldLocked(seedText)
	return s.bootstrapLocked(ctx)
}

// UpdateActive moves the reference point: generates the chunks its window
// requires, evicts the rest, and trims the region caches.
func (s *Service) UpdateActive(x, y float64) PositionUpdate {
	s.mu.Lock()
	chunks, regions := s.chunks, s.regions
	evictRange := s.cfg.CacheEvictRange
	s.mu.Unlock()

	p := spatial.Point{X: x, Y: y}
	generated, evicted := chunks.UpdateActive(p)
	regions.EvictFarFrom(x, y, evictRange)

	return PositionUpdate{
		Position:     p,
		Generated:    generated,
		Evicted:      evicted,
		ActiveChunks: chunks.ActiveChunks(),
		Region:       regionViewFrom(regions.RegionAt(x, y)),
	}
}

// ViewAround returns the renderable state for a viewport centered on the
// position, ensuring the active window covers it first.
func (s *Service) ViewAround(x, y, width, height float64) View {
	s.mu.Lock()
	chunks, regions, par := s.chunks, s.regions, s.par
	seedText := s.seedText
	s.mu.Unlock()

	if width <= 0 {
		width = defaultViewSize
	}
	if height <= 0 {
		height = defaultViewSize
	}

	p := spatial.Point{X: x, Y: y}
	chunks.UpdateActive(p)

	return View{
		Seed:         seedText,
		Position:     p,
		Region:       regionViewFrom(regions.RegionAt(x, y)),
		ActiveChunks: chunks.ActiveChunks(),
		Objects:      chunks.AggregateActive(),
		Parallax:     par.LayersAround(p, width, height),
	}
}

// MarkDiscovered records a discovery by canonical object key. The object is
// resolved against the active chunks first, then by transient regeneration
// of its chunk, so marks work even when the chunk was never loaded this
// session.
func (s *Service) MarkDiscovered(ctx context.Context, key string) (*discovery.Record, bool, error) {
	id, err := galaxy.ParseObjectID(key)
	if err != nil {
		return nil, false, errors.WrapValidation("invalid object key", err)
	}

	s.mu.Lock()
	chunks, disc := s.chunks, s.disc
	s.mu.Unlock()

	lo, ok := chunks.FindLive(id)
	if !ok {
		lo, ok = chunks.PeekObject(id)
	}
	if !ok {
		return nil, false, errors.NotFoundf("object %s does not exist in this universe", key)
	}

	rec, newly := disc.Mark(ctx, lo)
	chunks.SetDiscovered(id)
	return rec, newly, nil
}

// Discoveries lists discovery records, optionally filtered by kind.
func (s *Service) Discoveries(kind string) ([]discovery.Record, error) {
	s.mu.Lock()
	disc := s.disc
	s.mu.Unlock()

	if kind == "" {
		return disc.Records(), nil
	}
	switch k := galaxy.ObjectKind(kind); k {
	case galaxy.KindStar, galaxy.KindPlanet, galaxy.KindMoon, galaxy.KindNebula,
		galaxy.KindAsteroidField, galaxy.KindWormhole, galaxy.KindBlackHole:
		return disc.ByKind(k), nil
	default:
		return nil, errors.Validationf("unknown object kind %q", kind)
	}
}

// DiscoverySummary returns per-kind counts.
func (s *Service) DiscoverySummary(ctx context.Context) discovery.Summary {
	s.mu.Lock()
	disc := s.disc
	s.mu.Unlock()
	return disc.Summarize(ctx)
}

// ObjectDetail resolves one object by key, regenerating its chunk
// transiently when it is not resident.
func (s *Service) ObjectDetail(key string) (chunk.LiveObject, error) {
	id, err := galaxy.ParseObjectID(key)
	if err != nil {
		return chunk.LiveObject{}, errors.WrapValidation("invalid object key", err)
	}

	s.mu.Lock()
	chunks := s.chunks
	s.mu.Unlock()

	lo, ok := chunks.FindLive(id)
	if !ok {
		lo, ok = chunks.PeekObject(id)
	}
	if !ok {
		return chunk.LiveObject{}, errors.NotFoundf("object %s does not exist in this universe", key)
	}
	return lo, nil
}

// Reset wipes the discovery history for the current seed and rebuilds the
// generation stack with fresh caches. The seed is kept, so the universe
// itself is unchanged.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.disc.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset discovery history: %w", err)
	}
	s.buildWorldLocked(s.seedText)
	return nil
}

// ShareLink returns a frontend URL that reproduces this universe at the
// given position.
func (s *Service) ShareLink(frontendURL string, x, y float64) string {
	q := url.Values{}
	q.Set("seed", s.Seed())
	q.Set("x", strconv.FormatFloat(x, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(y, 'f', -1, 64))
	return frontendURL + "/?" + q.Encode()
}

// AddDebugObjects queues pre-placed rare objects for chunk generation.
func (s *Service) AddDebugObjects(objs []chunk.DebugObject) {
	s.mu.Lock()
	chunks := s.chunks
	s.mu.Unlock()
	chunks.AddDebugObjects(objs)
}

// EngineStatus reports the current engine state.
func (s *Service) EngineStatus() Status {
	s.mu.Lock()
	chunks, disc, seedText := s.chunks, s.disc, s.seedText
	s.mu.Unlock()

	return Status{
		Seed:         seedText,
		ChunkSize:    s.cfg.ChunkSize,
		LoadRadius:   s.cfg.LoadRadius,
		ActiveChunks: chunks.ActiveCount(),
		KnownPairs:   len(chunks.Pairs()),
		Discoveries:  disc.Count(),
	}
}
