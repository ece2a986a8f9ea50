package parallax

import (
	"io"
	"log/slog"
	"testing"

	"starscape-server/internal/spatial"
)

func newTestService(seed int64) *Service {
	return NewService(seed, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLayersDeterministic(t *testing.T) {
	a := newTestService(42)
	b := newTestService(42)

	la := a.LayersAround(spatial.Point{X: 1234, Y: -5678}, 4000, 3000)
	lb := b.LayersAround(spatial.Point{X: 1234, Y: -5678}, 4000, 3000)

	if len(la) != len(lb) {
		t.Fatalf("layer counts differ: %d vs %d", len(la), len(lb))
	}
	for i := range la {
		if len(la[i].Stars) != len(lb[i].Stars) {
			t.Fatalf("layer %d star counts differ", i)
		}
		for j := range la[i].Stars {
			if la[i].Stars[j] != lb[i].Stars[j] {
				t.Fatalf("layer %d star %d differs", i, j)
			}
		}
	}
}

func TestLayerDepthsAscend(t *testing.T) {
	s := newTestService(7)
	layers := s.LayersAround(spatial.Point{}, 2000, 2000)
	if len(layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(layers))
	}
	for i := 1; i < len(layers); i++ {
		if layers[i].Depth <= layers[i-1].Depth {
			t.Fatal("layer depths not strictly ascending")
		}
	}
	for _, l := range layers {
		if l.Depth <= 0 || l.Depth >= 1 {
			t.Fatalf("depth %v outside (0, 1)", l.Depth)
		}
	}
}

func TestStarsCoverViewport(t *testing.T) {
	s := newTestService(42)
	center := spatial.Point{X: 10000, Y: 10000}
	width, height := 4000.0, 3000.0
	layers := s.LayersAround(center, width, height)

	for i, l := range layers {
		if len(l.Stars) == 0 {
			t.Fatalf("layer %d is empty", i)
		}
		// Stars belong to cells overlapping the viewport, so they sit within
		// one cell size of its edges.
		maxCell := float64(layerDefs[i].cellSize)
		for _, st := range l.Stars {
			if st.X < center.X-width/2-maxCell || st.X > center.X+width/2+maxCell ||
				st.Y < center.Y-height/2-maxCell || st.Y > center.Y+height/2+maxCell {
				t.Fatalf("layer %d star at (%v, %v) outside the padded viewport", i, st.X, st.Y)
			}
			if st.Size < 0.4 || st.Size > 1.6 {
				t.Fatalf("star size %v outside [0.4, 1.6]", st.Size)
			}
			if st.Brightness < 0.2 || st.Brightness > 0.8 {
				t.Fatalf("star brightness %v outside [0.2, 0.8]", st.Brightness)
			}
		}
	}
}

func TestStableUnderViewportShift(t *testing.T) {
	// A cell's stars must not depend on which viewport request produced them.
	s := newTestService(42)

	wide := s.LayersAround(spatial.Point{X: 0, Y: 0}, 12000, 12000)
	narrow := s.LayersAround(spatial.Point{X: 0, Y: 0}, 2000, 2000)

	for i := range narrow {
		index := make(map[Star]bool, len(wide[i].Stars))
		for _, st := range wide[i].Stars {
			index[st] = true
		}
		for _, st := range narrow[i].Stars {
			if !index[st] {
				t.Fatalf("layer %d star at (%v, %v) missing from the wider request", i, st.X, st.Y)
			}
		}
	}
}
