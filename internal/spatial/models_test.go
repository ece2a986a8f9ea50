package spatial

import "testing"

func TestFloorDiv(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{0, 2000, 0},
		{1999, 2000, 0},
		{2000, 2000, 1},
		{-1, 2000, -1},
		{-2000, 2000, -1},
		{-2001, 2000, -2},
		{4500, 2000, 2},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.want {
			t.Errorf("FloorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestChunkOf(t *testing.T) {
	cases := []struct {
		p    Point
		want ChunkCoord
	}{
		{Point{0, 0}, ChunkCoord{0, 0}},
		{Point{1999.99, 1999.99}, ChunkCoord{0, 0}},
		{Point{2000, 0}, ChunkCoord{1, 0}},
		{Point{-0.5, -0.5}, ChunkCoord{-1, -1}},
		{Point{-2000, -2000.5}, ChunkCoord{-1, -2}},
	}
	for _, c := range cases {
		if got := ChunkOf(c.p, 2000); got != c.want {
			t.Errorf("ChunkOf(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestChunkOriginAndCenter(t *testing.T) {
	c := ChunkCoord{X: -1, Y: 2}
	ox, oy := c.Origin(2000)
	if ox != -2000 || oy != 4000 {
		t.Fatalf("Origin = (%d, %d), want (-2000, 4000)", ox, oy)
	}
	center := c.Center(2000)
	if center.X != -1000 || center.Y != 5000 {
		t.Fatalf("Center = %v, want {-1000 5000}", center)
	}
	if ChunkOf(center, 2000) != c {
		t.Fatalf("center of chunk %v resolved to %v", c, ChunkOf(center, 2000))
	}
}

func TestWindow(t *testing.T) {
	c := ChunkCoord{X: 3, Y: -2}
	w := Window(c, 1)
	if len(w) != 9 {
		t.Fatalf("window size = %d, want 9", len(w))
	}
	if w[0] != (ChunkCoord{X: 2, Y: -3}) {
		t.Fatalf("first window entry = %v, want {2 -3}", w[0])
	}
	if w[4] != c {
		t.Fatalf("center entry = %v, want %v", w[4], c)
	}
	if w[8] != (ChunkCoord{X: 4, Y: -1}) {
		t.Fatalf("last window entry = %v, want {4 -1}", w[8])
	}
}

func TestNeighborhoodExcludesCenter(t *testing.T) {
	c := ChunkCoord{X: 0, Y: 0}
	n := Neighborhood(c, 2)
	if len(n) != 24 {
		t.Fatalf("neighborhood size = %d, want 24", len(n))
	}
	for _, nc := range n {
		if nc == c {
			t.Fatal("neighborhood contains the center chunk")
		}
	}
}

func TestAreaAndCellOf(t *testing.T) {
	if got := AreaOf(Point{X: -1, Y: 49999}, 50000); got != (AreaCoord{X: -1, Y: 0}) {
		t.Fatalf("AreaOf = %v, want {-1 0}", got)
	}
	if got := CellOf(Point{X: 3999, Y: -4001}, 2000); got != (CellCoord{X: 1, Y: -3}) {
		t.Fatalf("CellOf = %v, want {1 -3}", got)
	}
}

func TestDistanceTo(t *testing.T) {
	d := Point{X: 0, Y: 0}.DistanceTo(Point{X: 3, Y: 4})
	if d != 5 {
		t.Fatalf("distance = %v, want 5", d)
	}
}
