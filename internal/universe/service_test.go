package universe

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"starscape-server/internal/galaxy"
	"starscape-server/internal/shared/config"
)

func testConfig(seed string) config.UniverseConfig {
	return config.UniverseConfig{
		Seed:            seed,
		ChunkSize:       2000,
		LoadRadius:      1,
		MacroAreaSize:   50000,
		RegionRadius:    60000,
		CacheEvictRange: 200000,
	}
}

func newTestService(t *testing.T, seed string) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(testConfig(seed), nil, nil, logger)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestSeedFromConfig(t *testing.T) {
	s := newTestService(t, "42")
	if s.Seed() != "42" {
		t.Fatalf("seed %q, want 42", s.Seed())
	}
}

func TestEmptySeedGetsRandomized(t *testing.T) {
	s := newTestService(t, "")
	if s.Seed() == "" {
		t.Fatal("empty configured seed was not replaced")
	}
}

func TestViewAroundPopulatesEverything(t *testing.T) {
	s := newTestService(t, "42")
	v := s.ViewAround(0, 0, 4000, 3000)

	if v.Seed != "42" {
		t.Fatalf("view seed %q", v.Seed)
	}
	if v.Position.X != 0 || v.Position.Y != 0 {
		t.Fatalf("view position %+v", v.Position)
	}
	if len(v.ActiveChunks) == 0 {
		t.Fatal("no active chunks in view")
	}
	if v.Region.Key == "" || v.Region.Name == "" {
		t.Fatalf("region view empty: %+v", v.Region)
	}
	if len(v.Parallax) != 3 {
		t.Fatalf("got %d parallax layers, want 3", len(v.Parallax))
	}
	if len(v.Objects.BackgroundStars) == 0 {
		t.Fatal("no background stars in the aggregate")
	}
}

func TestViewsAreDeterministic(t *testing.T) {
	a := newTestService(t, "epsilon-eridani")
	b := newTestService(t, "epsilon-eridani")

	va := a.ViewAround(5000, -5000, 4000, 3000)
	vb := b.ViewAround(5000, -5000, 4000, 3000)

	if len(va.Objects.Systems) != len(vb.Objects.Systems) {
		t.Fatalf("system counts differ: %d vs %d", len(va.Objects.Systems), len(vb.Objects.Systems))
	}
	for i := range va.Objects.Systems {
		if va.Objects.Systems[i].X != vb.Objects.Systems[i].X ||
			va.Objects.Systems[i].Y != vb.Objects.Systems[i].Y {
			t.Fatalf("system %d position differs", i)
		}
	}
}

func TestUpdateActiveReportsWindow(t *testing.T) {
	s := newTestService(t, "42")

	up := s.UpdateActive(0, 0)
	if up.Generated != 9 {
		t.Fatalf("generated %d, want 9", up.Generated)
	}
	if len(up.ActiveChunks) == 0 {
		t.Fatal("no active chunks reported")
	}
	if up.Region.Key == "" {
		t.Fatal("region missing from position update")
	}
}

// firstStarKey walks the view outward until an aggregated system appears.
func firstStarKey(t *testing.T, s *Service) (string, *galaxy.Star) {
	t.Helper()
	for i := 0; i < 40; i++ {
		s.UpdateActive(float64(i*6000), 0)
		agg := s.ViewAround(float64(i*6000), 0, 4000, 3000).Objects
		if len(agg.Systems) > 0 {
			star := agg.Systems[0].Star
			return galaxy.StarID(star).String(), star
		}
	}
	t.Fatal("no star system found along a 40-stop sweep")
	return "", nil
}

func TestMarkDiscoveredIsIdempotent(t *testing.T) {
	s := newTestService(t, "42")
	ctx := context.Background()
	key, _ := firstStarKey(t, s)

	rec, fresh, err := s.MarkDiscovered(ctx, key)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !fresh {
		t.Fatal("first mark not reported as new")
	}
	if rec.Key != key {
		t.Fatalf("record key %q, want %q", rec.Key, key)
	}

	_, fresh, err = s.MarkDiscovered(ctx, key)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if fresh {
		t.Fatal("second mark reported as new")
	}
}

func TestMarkDiscoveredAfterEviction(t *testing.T) {
	// Marking must work by transient reconstruction even when the object's
	// chunk has been evicted from the active window.
	s := newTestService(t, "42")
	ctx := context.Background()
	key, star := firstStarKey(t, s)

	s.UpdateActive(2e6, 2e6)

	rec, fresh, err := s.MarkDiscovered(ctx, key)
	if err != nil {
		t.Fatalf("mark after eviction: %v", err)
	}
	if !fresh {
		t.Fatal("mark after eviction not reported as new")
	}
	if rec.X != star.X || rec.Y != star.Y {
		t.Fatalf("reconstructed position (%v, %v), live was (%v, %v)", rec.X, rec.Y, star.X, star.Y)
	}
}

func TestMarkDiscoveredRejectsBadKey(t *testing.T) {
	s := newTestService(t, "42")
	if _, _, err := s.MarkDiscovered(context.Background(), "not-a-key"); err == nil {
		t.Fatal("malformed key accepted")
	}
	if _, _, err := s.MarkDiscovered(context.Background(), "star:999999999,999999999"); err == nil {
		t.Fatal("nonexistent object accepted")
	}
}

func TestDiscoveriesKindFilter(t *testing.T) {
	s := newTestService(t, "42")
	ctx := context.Background()
	key, _ := firstStarKey(t, s)
	if _, _, err := s.MarkDiscovered(ctx, key); err != nil {
		t.Fatalf("mark: %v", err)
	}

	recs, err := s.Discoveries("")
	if err != nil || len(recs) != 1 {
		t.Fatalf("unfiltered: %d records, err %v", len(recs), err)
	}
	recs, err = s.Discoveries("star")
	if err != nil || len(recs) != 1 {
		t.Fatalf("star filter: %d records, err %v", len(recs), err)
	}
	recs, err = s.Discoveries("nebula")
	if err != nil || len(recs) != 0 {
		t.Fatalf("nebula filter: %d records, err %v", len(recs), err)
	}
	if _, err = s.Discoveries("starship"); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestObjectDetail(t *testing.T) {
	s := newTestService(t, "42")
	key, star := firstStarKey(t, s)

	lo, err := s.ObjectDetail(key)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if lo.X != star.X || lo.Y != star.Y {
		t.Fatal("detail position does not match the live object")
	}
	if lo.TypeName == "" {
		t.Fatal("detail has no type name")
	}
}

func TestSetSeedRebuildsWorld(t *testing.T) {
	s := newTestService(t, "42")
	ctx := context.Background()
	key, _ := firstStarKey(t, s)
	if _, _, err := s.MarkDiscovered(ctx, key); err != nil {
		t.Fatalf("mark: %v", err)
	}

	if err := s.SetSeed(ctx, "andromeda"); err != nil {
		t.Fatalf("set seed: %v", err)
	}
	if s.Seed() != "andromeda" {
		t.Fatalf("seed %q after switch", s.Seed())
	}
	if got := s.EngineStatus().Discoveries; got != 0 {
		t.Fatalf("%d discoveries carried across a seed switch", got)
	}

	if err := s.SetSeed(ctx, ""); err == nil {
		t.Fatal("empty seed accepted")
	}
}

func TestResetClearsDiscoveries(t *testing.T) {
	s := newTestService(t, "42")
	ctx := context.Background()
	key, _ := firstStarKey(t, s)
	if _, _, err := s.MarkDiscovered(ctx, key); err != nil {
		t.Fatalf("mark: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := s.EngineStatus().Discoveries; got != 0 {
		t.Fatalf("%d discoveries after reset", got)
	}
	if s.Seed() != "42" {
		t.Fatalf("reset changed the seed to %q", s.Seed())
	}

	sum := s.DiscoverySummary(ctx)
	if sum.Total != 0 {
		t.Fatalf("summary total %d after reset", sum.Total)
	}
}

func TestShareLinkEmbedsSeedAndPosition(t *testing.T) {
	s := newTestService(t, "alpha centauri & friends")
	link := s.ShareLink("https://example.com", 1500, -320.5)

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("share link does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("seed") != "alpha centauri & friends" {
		t.Fatalf("seed round-tripped as %q", q.Get("seed"))
	}
	if q.Get("x") != "1500" || q.Get("y") != "-320.5" {
		t.Fatalf("position round-tripped as (%q, %q)", q.Get("x"), q.Get("y"))
	}
	if !strings.HasPrefix(link, "https://example.com/?") {
		t.Fatalf("link %q has the wrong shape", link)
	}
}

func TestEngineStatus(t *testing.T) {
	s := newTestService(t, "42")
	s.UpdateActive(0, 0)

	st := s.EngineStatus()
	if st.Seed != "42" || st.ChunkSize != 2000 || st.LoadRadius != 1 {
		t.Fatalf("status config fields wrong: %+v", st)
	}
	if st.ActiveChunks == 0 {
		t.Fatal("status reports no active chunks")
	}
}
