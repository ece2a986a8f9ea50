package discovery

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"starscape-server/internal/chunk"
	"starscape-server/internal/galaxy"
	"starscape-server/internal/shared/redis"
)

const summaryCacheTTL = 30 * time.Second

// Service is the discovery map: the authoritative record of what the player
// has found, independent of which chunks are currently resident. It
// implements chunk.Restorer so regenerated chunks get their flags back.
// Both repo and cache may be nil, leaving the map purely in-memory.
type Service struct {
	logger *slog.Logger
	repo   *Repository
	cache  *redis.Client
	seed   string

	mu      sync.Mutex
	records map[galaxy.ObjectID]*Record
}

func NewService(seed string, repo *Repository, cache *redis.Client, logger *slog.Logger) *Service {
	logger.Debug("Initializing discovery service", "seed", seed)

	return &Service{
		logger:  logger,
		repo:    repo,
		cache:   cache,
		seed:    seed,
		records: make(map[galaxy.ObjectID]*Record),
	}
}

// LoadPersisted replaces the in-memory map with the persisted records for
// this seed and returns the wormhole pair records they imply, so the caller
// can re-seed the chunk manager's pair registry.
func (s *Service) LoadPersisted(ctx context.Context) ([]chunk.PairRecord, error) {
	logger := s.logger.With("component", "discovery_service", "operation", "load_persisted")

	if s.repo == nil {
		return nil, nil
	}

	recs, err := s.repo.ListBySeed(ctx, s.seed)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[galaxy.ObjectID]*Record, len(recs))
	var pairs []chunk.PairRecord
	for i := range recs {
		rec := recs[i]
		id, err := galaxy.ParseObjectID(rec.Key)
		if err != nil {
			logger.Warn("Skipping unparseable discovery record", "key", rec.Key, "error", err)
			continue
		}
		s.records[id] = &rec

		if rec.Kind == galaxy.KindWormhole {
			pairs = append(pairs, pairRecordFor(rec))
		}
	}

	logger.Info("Discovery records loaded", "count", len(s.records), "wormhole_pairs", len(pairs))
	return pairs, nil
}

// pairRecordFor rebuilds the pair registry entry a discovered endpoint
// implies, regardless of which end was found.
func pairRecordFor(rec Record) chunk.PairRecord {
	if rec.Designation == galaxy.DesignationBeta {
		return chunk.PairRecord{ID: rec.PairID, AlphaX: rec.TwinX, AlphaY: rec.TwinY, BetaX: rec.X, BetaY: rec.Y}
	}
	return chunk.PairRecord{ID: rec.PairID, AlphaX: rec.X, AlphaY: rec.Y, BetaX: rec.TwinX, BetaY: rec.TwinY}
}

// Mark records a discovery. Marking is idempotent: the second return is
// false when the object was already discovered. Persistence failures are
// logged but do not lose the in-memory mark.
func (s *Service) Mark(ctx context.Context, lo chunk.LiveObject) (*Record, bool) {
	s.mu.Lock()
	if rec, ok := s.records[lo.ID]; ok {
		s.mu.Unlock()
		return rec, false
	}

	rec := &Record{
		Key:          lo.ID.String(),
		Kind:         lo.ID.Kind,
		TypeName:     lo.TypeName,
		X:            lo.X,
		Y:            lo.Y,
		PairID:       lo.PairID,
		Designation:  lo.Designation,
		TwinX:        lo.TwinX,
		TwinY:        lo.TwinY,
		DiscoveredAt: time.Now().UTC(),
	}
	s.records[lo.ID] = rec
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, s.seed, *rec); err != nil {
			s.logger.Error("Failed to persist discovery record", "key", rec.Key, "error", err)
		}
	}
	s.invalidateSummary(ctx)

	s.logger.Info("Object discovered",
		"key", rec.Key,
		"kind", rec.Kind,
		"type", rec.TypeName,
	)
	return rec, true
}

func (s *Service) IsDiscovered(id galaxy.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id]
	return ok
}

// Records returns all discoveries, oldest first.
func (s *Service) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DiscoveredAt.Equal(out[j].DiscoveredAt) {
			return out[i].DiscoveredAt.Before(out[j].DiscoveredAt)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ByKind returns the discoveries of one object kind, oldest first.
func (s *Service) ByKind(kind galaxy.ObjectKind) []Record {
	all := s.Records()
	out := make([]Record, 0, len(all))
	for _, rec := range all {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Summarize returns per-kind discovery counts, via the Redis cache when one
// is wired.
func (s *Service) Summarize(ctx context.Context) Summary {
	if cached, ok := s.cachedSummary(ctx); ok {
		return cached
	}

	s.mu.Lock()
	summary := Summary{ByKind: make(map[galaxy.ObjectKind]int)}
	for id := range s.records {
		summary.Total++
		summary.ByKind[id.Kind]++
	}
	s.mu.Unlock()

	s.storeSummary(ctx, summary)
	return summary
}

// Restore re-applies discovery flags to a freshly generated chunk, so
// eviction and regeneration never lose a mark. Implements chunk.Restorer.
func (s *Service) Restore(ch *galaxy.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	has := func(id galaxy.ObjectID) bool {
		_, ok := s.records[id]
		return ok
	}

	for _, sys := range ch.Systems {
		sys.Star.Discovered = has(galaxy.StarID(sys.Star))
		if sys.Companion != nil {
			sys.Companion.Discovered = has(galaxy.StarID(sys.Companion))
		}
		for _, p := range sys.Planets {
			p.Discovered = has(galaxy.PlanetID(sys, p))
			for _, m := range p.Moons {
				m.Discovered = has(galaxy.MoonID(sys, m))
			}
		}
	}
	for _, n := range ch.Nebulae {
		n.Discovered = has(galaxy.NebulaID(n))
	}
	for _, f := range ch.AsteroidFields {
		f.Discovered = has(galaxy.AsteroidFieldID(f))
	}
	for _, w := range ch.Wormholes {
		w.Discovered = has(galaxy.WormholeID(w))
	}
	for _, b := range ch.BlackHoles {
		b.Discovered = has(galaxy.BlackHoleID(b))
	}
}

// Reset wipes the discovery map for this seed, in memory and in the store.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.records = make(map[galaxy.ObjectID]*Record)
	s.mu.Unlock()

	s.invalidateSummary(ctx)

	if s.repo != nil {
		if err := s.repo.DeleteBySeed(ctx, s.seed); err != nil {
			return err
		}
	}

	s.logger.Info("Discovery map reset", "seed", s.seed)
	return nil
}

func (s *Service) summaryKey() string {
	return "starscape:discovery:summary:" + s.seed
}

func (s *Service) cachedSummary(ctx context.Context) (Summary, bool) {
	if s.cache == nil {
		return Summary{}, false
	}
	data, err := s.cache.Get(ctx, s.summaryKey()).Bytes()
	if err != nil {
		return Summary{}, false
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return Summary{}, false
	}
	return summary, true
}

func (s *Service) storeSummary(ctx context.Context, summary Summary) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.summaryKey(), data, summaryCacheTTL).Err(); err != nil {
		s.logger.Debug("Failed to cache discovery summary", "error", err)
	}
}

func (s *Service) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.summaryKey()).Err(); err != nil {
		s.logger.Debug("Failed to invalidate discovery summary cache", "error", err)
	}
}
