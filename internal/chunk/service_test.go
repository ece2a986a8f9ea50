package chunk

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"sort"
	"testing"

	"starscape-server/internal/galaxy"
	"starscape-server/internal/region"
	"starscape-server/internal/spatial"
)

const testChunkSize = 2000

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(seed int64) *Service {
	logger := testLogger()
	regions := region.NewService(seed, region.DefaultConfig(), logger)
	return NewService(Config{Seed: seed, Size: testChunkSize, LoadRadius: 1}, regions, logger)
}

// sortWormholes normalizes the one legitimately order-dependent slice: beta
// endpoints are appended either by the registry pass or by twin injection,
// depending on which chunk the caller touched first.
func sortWormholes(ch *galaxy.Chunk) {
	sort.Slice(ch.Wormholes, func(i, j int) bool {
		if ch.Wormholes[i].PairID != ch.Wormholes[j].PairID {
			return ch.Wormholes[i].PairID < ch.Wormholes[j].PairID
		}
		return ch.Wormholes[i].Designation < ch.Wormholes[j].Designation
	})
}

func chunkJSON(t *testing.T, ch *galaxy.Chunk) string {
	t.Helper()
	sortWormholes(ch)
	b, err := json.Marshal(ch)
	if err != nil {
		t.Fatalf("marshal chunk: %v", err)
	}
	return string(b)
}

func TestGenerateDeterministic(t *testing.T) {
	a := newTestService(42)
	b := newTestService(42)

	for y := -3; y <= 3; y++ {
		for x := -3; x <= 3; x++ {
			c := spatial.ChunkCoord{X: x, Y: y}
			ja := chunkJSON(t, a.GetChunk(c))
			jb := chunkJSON(t, b.GetChunk(c))
			if ja != jb {
				t.Fatalf("chunk (%d, %d) differs between services with the same seed", x, y)
			}
		}
	}
}

func TestGenerateSeedsDiverge(t *testing.T) {
	a := newTestService(42)
	b := newTestService(43)

	same := 0
	total := 0
	for y := -2; y <= 2; y++ {
		for x := -2; x <= 2; x++ {
			c := spatial.ChunkCoord{X: x, Y: y}
			if chunkJSON(t, a.GetChunk(c)) == chunkJSON(t, b.GetChunk(c)) {
				same++
			}
			total++
		}
	}
	if same == total {
		t.Fatal("different seeds produced identical universes")
	}
}

func TestGenerateOrderIndependence(t *testing.T) {
	var coords []spatial.ChunkCoord
	for y := -4; y <= 4; y++ {
		for x := -4; x <= 4; x++ {
			coords = append(coords, spatial.ChunkCoord{X: x, Y: y})
		}
	}
	reversed := make([]spatial.ChunkCoord, len(coords))
	for i, c := range coords {
		reversed[len(coords)-1-i] = c
	}

	a := newTestService(42)
	for _, c := range coords {
		a.GetChunk(c)
	}
	b := newTestService(42)
	for _, c := range reversed {
		b.GetChunk(c)
	}

	for _, c := range coords {
		ja := chunkJSON(t, a.GetChunk(c))
		jb := chunkJSON(t, b.GetChunk(c))
		if ja != jb {
			t.Fatalf("chunk (%d, %d) depends on generation order:\n%s\nvs\n%s", c.X, c.Y, ja, jb)
		}
	}
}

func TestRepeatRequestReturnsCachedChunk(t *testing.T) {
	s := newTestService(7)
	c := spatial.ChunkCoord{X: 1, Y: 1}
	if s.GetChunk(c) != s.GetChunk(c) {
		t.Fatal("re-requesting an active chunk returned a new instance")
	}
}

// scanForAlpha generates an expanding square of chunks until a naturally
// rolled alpha endpoint appears. The per-chunk chance makes the probability
// of an empty 151x151 scan negligible.
func scanForAlpha(t *testing.T, s *Service) *galaxy.Wormhole {
	t.Helper()
	for r := 0; r <= 75; r++ {
		for _, c := range spatial.Window(spatial.ChunkCoord{}, r) {
			ch := s.GetChunk(c)
			if ch == nil {
				continue
			}
			for _, w := range ch.Wormholes {
				if w.Designation == galaxy.DesignationAlpha {
					return w
				}
			}
		}
	}
	t.Fatal("no wormhole alpha in a 151x151 chunk scan")
	return nil
}

func TestWormholePairingClosure(t *testing.T) {
	s := newTestService(42)
	alpha := scanForAlpha(t, s)

	twinChunk := spatial.ChunkOf(spatial.Point{X: alpha.TwinX, Y: alpha.TwinY}, testChunkSize)
	s.mu.Lock()
	ch, ok := s.chunks[twinChunk]
	s.mu.Unlock()
	if !ok {
		t.Fatal("twin chunk was not force-generated when the alpha appeared")
	}

	var beta *galaxy.Wormhole
	for _, w := range ch.Wormholes {
		if w.PairID == alpha.PairID && w.Designation == galaxy.DesignationBeta {
			beta = w
			break
		}
	}
	if beta == nil {
		t.Fatalf("pair %s has no beta endpoint in its twin chunk", alpha.PairID)
	}

	if beta.X != alpha.TwinX || beta.Y != alpha.TwinY {
		t.Fatalf("beta at (%v, %v), alpha points at (%v, %v)", beta.X, beta.Y, alpha.TwinX, alpha.TwinY)
	}
	if beta.TwinX != alpha.X || beta.TwinY != alpha.Y {
		t.Fatalf("beta points back at (%v, %v), alpha is at (%v, %v)", beta.TwinX, beta.TwinY, alpha.X, alpha.Y)
	}

	dist := math.Hypot(alpha.X-beta.X, alpha.Y-beta.Y)
	if dist < 50000 || dist > 200000 {
		t.Fatalf("pair separation %v outside the 50k-200k range", dist)
	}

	found := false
	for _, pr := range s.Pairs() {
		if pr.ID == alpha.PairID {
			found = true
			if pr.AlphaX != alpha.X || pr.AlphaY != alpha.Y || pr.BetaX != beta.X || pr.BetaY != beta.Y {
				t.Fatalf("registry record %+v does not match endpoints", pr)
			}
		}
	}
	if !found {
		t.Fatalf("pair %s missing from the registry", alpha.PairID)
	}
}

func TestBetaSurvivesTwinChunkEviction(t *testing.T) {
	s := newTestService(42)
	alpha := scanForAlpha(t, s)
	twinChunk := spatial.ChunkOf(spatial.Point{X: alpha.TwinX, Y: alpha.TwinY}, testChunkSize)

	s.mu.Lock()
	delete(s.chunks, twinChunk)
	s.mu.Unlock()

	ch := s.GetChunk(twinChunk)
	for _, w := range ch.Wormholes {
		if w.PairID == alpha.PairID && w.Designation == galaxy.DesignationBeta {
			if w.X != alpha.TwinX || w.Y != alpha.TwinY {
				t.Fatalf("regenerated beta moved to (%v, %v)", w.X, w.Y)
			}
			return
		}
	}
	t.Fatalf("regenerated twin chunk lost beta endpoint of pair %s", alpha.PairID)
}

func TestRegisteredPairSynthesizesBeta(t *testing.T) {
	// Registering a pair up front (the persisted-discovery path) must make an
	// independently generated twin chunk carry the beta endpoint.
	pr := PairRecord{ID: "WH-TESTPAIR", AlphaX: 500000, AlphaY: 500000, BetaX: 300, BetaY: 400}
	s := newTestService(42)
	s.RegisterPair(pr)

	ch := s.GetChunk(spatial.ChunkCoord{X: 0, Y: 0})
	for _, w := range ch.Wormholes {
		if w.PairID == pr.ID {
			if w.Designation != galaxy.DesignationBeta {
				t.Fatalf("synthesized endpoint has designation %q", w.Designation)
			}
			if w.X != pr.BetaX || w.Y != pr.BetaY || w.TwinX != pr.AlphaX || w.TwinY != pr.AlphaY {
				t.Fatalf("synthesized beta endpoints wrong: %+v", w)
			}
			return
		}
	}
	t.Fatal("registered pair's beta endpoint was not synthesized")
}

// scanForBlackHole generates an expanding square of chunks until a black
// hole materializes. Holes suppress their chunk's own star system and
// neighbor placement avoids their clearance disk, so the survival rate per
// successful roll is high and a 201x201 scan cannot plausibly come up empty.
func scanForBlackHole(t *testing.T, s *Service) (*galaxy.BlackHole, spatial.ChunkCoord) {
	t.Helper()
	for r := 0; r <= 100; r++ {
		for _, c := range spatial.Window(spatial.ChunkCoord{}, r) {
			ch := s.GetChunk(c)
			if ch == nil {
				continue
			}
			if len(ch.BlackHoles) > 0 {
				return ch.BlackHoles[0], c
			}
		}
	}
	t.Fatal("no black hole in a 201x201 chunk scan")
	return nil, spatial.ChunkCoord{}
}

func TestBlackHoleClearance(t *testing.T) {
	s := newTestService(42)
	hole, home := scanForBlackHole(t, s)

	center := home.Center(testChunkSize)
	if hole.X != center.X || hole.Y != center.Y {
		t.Fatalf("black hole at (%v, %v), chunk center is (%v, %v)", hole.X, hole.Y, center.X, center.Y)
	}
	if len(s.GetChunk(home).Systems) != 0 {
		t.Fatal("black hole chunk also hosts a star system")
	}

	// Clearance reaches 2500 for stars and 5000 for other holes; a radius-3
	// neighborhood covers both.
	for _, n := range spatial.Window(home, 3) {
		ch := s.GetChunk(n)
		for _, sys := range ch.Systems {
			if d := math.Hypot(hole.X-sys.X, hole.Y-sys.Y); d < 2500 {
				t.Fatalf("star system at (%v, %v) within %v of the black hole", sys.X, sys.Y, d)
			}
		}
		if n == home {
			continue
		}
		for _, other := range ch.BlackHoles {
			if d := math.Hypot(hole.X-other.X, hole.Y-other.Y); d < 5000 {
				t.Fatalf("black holes at (%v, %v) and (%v, %v) within %v", hole.X, hole.Y, other.X, other.Y, d)
			}
		}
	}
}

func TestUpdateActiveWindow(t *testing.T) {
	s := newTestService(7)

	generated, _ := s.UpdateActive(spatial.Point{X: 0, Y: 0})
	if generated != 9 {
		t.Fatalf("initial window: generated %d, want 9", generated)
	}
	// Twin force-generation can add chunks outside the window; they are
	// evicted by the next update, so the set converges to exactly the window.
	s.UpdateActive(spatial.Point{X: 0, Y: 0})
	if got := s.ActiveCount(); got != 9 {
		t.Fatalf("active count %d after settling, want 9", got)
	}

	// One chunk to the right: one new column in, one old column out. Evicted
	// can exceed 3 when a fresh chunk's wormhole force-generated a twin.
	generated, evicted := s.UpdateActive(spatial.Point{X: testChunkSize + 100, Y: 100})
	if generated != 3 || evicted < 3 {
		t.Fatalf("shifted window: generated %d, evicted %d", generated, evicted)
	}

	want := spatial.Window(spatial.ChunkCoord{X: 1, Y: 0}, 1)
	sort.Slice(want, func(i, j int) bool {
		if want[i].Y != want[j].Y {
			return want[i].Y < want[j].Y
		}
		return want[i].X < want[j].X
	})
	got := s.ActiveChunks()
	if len(got) != len(want) {
		t.Fatalf("active set size %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("active set mismatch at %d: %v vs %v", i, got[i], want[i])
		}
	}
}

type recordingRestorer struct {
	ids map[galaxy.ObjectID]bool
}

func (r *recordingRestorer) Restore(ch *galaxy.Chunk) {
	for _, sys := range ch.Systems {
		if r.ids[galaxy.StarID(sys.Star)] {
			sys.Star.Discovered = true
		}
	}
}

func TestDiscoveryRestoredAfterEviction(t *testing.T) {
	s := newTestService(42)
	restorer := &recordingRestorer{ids: make(map[galaxy.ObjectID]bool)}
	s.SetRestorer(restorer)

	s.UpdateActive(spatial.Point{X: 0, Y: 0})
	agg := s.AggregateActive()
	if len(agg.Systems) == 0 {
		t.Skip("no systems in the initial window for this seed")
	}
	star := agg.Systems[0].Star
	id := galaxy.StarID(star)

	if !s.SetDiscovered(id) {
		t.Fatalf("SetDiscovered(%v) failed on a live star", id)
	}
	restorer.ids[id] = true

	// Travel far enough that the whole original window is evicted, then back.
	s.UpdateActive(spatial.Point{X: 1e6, Y: 1e6})
	s.UpdateActive(spatial.Point{X: 0, Y: 0})

	lo, ok := s.FindLive(id)
	if !ok {
		t.Fatalf("star %v missing after regeneration", id)
	}
	if lo.X != star.X || lo.Y != star.Y {
		t.Fatalf("star %v moved: (%v, %v) vs (%v, %v)", id, lo.X, lo.Y, star.X, star.Y)
	}

	found := false
	for _, sys := range s.AggregateActive().Systems {
		if galaxy.StarID(sys.Star) == id {
			found = true
			if !sys.Star.Discovered {
				t.Fatal("discovery flag lost across eviction and regeneration")
			}
		}
	}
	if !found {
		t.Fatalf("star %v not present in the regenerated window", id)
	}
}

func TestPeekObjectHasNoSideEffects(t *testing.T) {
	scout := newTestService(42)
	scout.UpdateActive(spatial.Point{X: 0, Y: 0})
	agg := scout.AggregateActive()
	if len(agg.Systems) == 0 {
		t.Skip("no systems in the initial window for this seed")
	}
	id := galaxy.StarID(agg.Systems[0].Star)

	s := newTestService(42)
	lo, ok := s.PeekObject(id)
	if !ok {
		t.Fatalf("PeekObject(%v) found nothing", id)
	}
	if lo.X != agg.Systems[0].Star.X || lo.Y != agg.Systems[0].Star.Y {
		t.Fatal("peeked object does not match the live generation")
	}
	if s.ActiveCount() != 0 {
		t.Fatalf("peek activated %d chunks", s.ActiveCount())
	}
	if len(s.Pairs()) != 0 {
		t.Fatalf("peek registered %d wormhole pairs", len(s.Pairs()))
	}
}

func TestDebugObjectSurvivesRegeneration(t *testing.T) {
	s := newTestService(7)
	obj := DebugObject{Kind: galaxy.KindBlackHole, X: 750, Y: 750, Type: "supermassive"}
	s.AddDebugObjects([]DebugObject{obj})

	c := spatial.ChunkCoord{X: 0, Y: 0}
	find := func(ch *galaxy.Chunk) *galaxy.BlackHole {
		for _, b := range ch.BlackHoles {
			if b.X == obj.X && b.Y == obj.Y {
				return b
			}
		}
		return nil
	}

	b := find(s.GetChunk(c))
	if b == nil {
		t.Fatal("queued debug object missing from generated chunk")
	}
	if b.Type != "supermassive" {
		t.Fatalf("debug object type %q, want supermassive", b.Type)
	}

	s.mu.Lock()
	delete(s.chunks, c)
	s.mu.Unlock()

	if find(s.GetChunk(c)) == nil {
		t.Fatal("debug object lost after eviction and regeneration")
	}
}

func TestDebugObjectInjectedIntoActiveChunk(t *testing.T) {
	s := newTestService(7)
	c := spatial.ChunkCoord{X: 0, Y: 0}
	ch := s.GetChunk(c)
	before := len(ch.BlackHoles)

	s.AddDebugObjects([]DebugObject{{Kind: galaxy.KindBlackHole, X: 100, Y: 100}})
	if len(ch.BlackHoles) != before+1 {
		t.Fatalf("live injection: %d black holes, want %d", len(ch.BlackHoles), before+1)
	}
}

func TestDebugWormholeRegistersPair(t *testing.T) {
	s := newTestService(7)
	s.AddDebugObjects([]DebugObject{{
		Kind: galaxy.KindWormhole, X: 500, Y: 500,
		PairID: "WH-DBGPAIR", TwinX: 90000, TwinY: 90000,
	}})

	ch := s.GetChunk(spatial.ChunkCoord{X: 0, Y: 0})
	if !hasPairEndpoint(ch, "WH-DBGPAIR") {
		t.Fatal("debug wormhole missing from its chunk")
	}
	found := false
	for _, pr := range s.Pairs() {
		if pr.ID == "WH-DBGPAIR" {
			found = true
		}
	}
	if !found {
		t.Fatal("debug wormhole pair not registered")
	}
}

func BenchmarkGenerateChunk(b *testing.B) {
	s := newTestService(42)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.GetChunk(spatial.ChunkCoord{X: i % 1000, Y: i / 1000})
	}
}

func BenchmarkUpdateActive(b *testing.B) {
	s := newTestService(42)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.UpdateActive(spatial.Point{X: float64(i * testChunkSize), Y: 0})
	}
}
