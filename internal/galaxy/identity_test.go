package galaxy

import "testing"

func TestObjectIDRoundTrip(t *testing.T) {
	ids := []ObjectID{
		StarID(&Star{X: 1234.7, Y: -88.2}),
		PlanetID(&StarSystem{X: -400.9, Y: 2500.1}, &Planet{Index: 3}),
		MoonID(&StarSystem{X: 10.5, Y: 10.5}, &Moon{PlanetIndex: 2, Index: 1}),
		NebulaID(&Nebula{X: -9000.01, Y: 0}),
		AsteroidFieldID(&AsteroidField{X: 777.3, Y: -777.3}),
		WormholeID(&Wormhole{X: 50.0, Y: 60.0, Designation: DesignationAlpha}),
		WormholeID(&Wormhole{X: -50.0, Y: -60.0, Designation: DesignationBeta}),
		BlackHoleID(&BlackHole{X: 123000.99, Y: -456000.5}),
	}

	for _, id := range ids {
		parsed, err := ParseObjectID(id.String())
		if err != nil {
			t.Fatalf("ParseObjectID(%q): %v", id.String(), err)
		}
		if parsed != id {
			t.Fatalf("round trip changed id: %q became %+v", id.String(), parsed)
		}
	}
}

func TestObjectIDFloorsNegativePositions(t *testing.T) {
	id := StarID(&Star{X: -0.5, Y: -1.5})
	if id.X != -1 || id.Y != -2 {
		t.Fatalf("expected floored coords (-1, -2), got (%d, %d)", id.X, id.Y)
	}
}

func TestMoonIDUsesSystemPrimaryPosition(t *testing.T) {
	sys := &StarSystem{X: 300.2, Y: -120.8}
	id := MoonID(sys, &Moon{PlanetIndex: 1, Index: 0})
	if id.X != 300 || id.Y != -121 {
		t.Fatalf("moon id not anchored to system primary: (%d, %d)", id.X, id.Y)
	}
	if id.Index != 1 || id.SubIndex != 0 {
		t.Fatalf("moon ordinals wrong: index %d sub %d", id.Index, id.SubIndex)
	}
}

func TestParseObjectIDRejectsMalformed(t *testing.T) {
	// Truncated coordinates, wrong ordinal arity per kind, non-numeric
	// ordinals, unknown designations, unknown kinds.
	bad := []string{
		"",
		"star",
		"star:12",
		"star:12,ab",
		"star:1,2:3",
		"planet:1,2",
		"planet:1,2:x",
		"moon:1,2:3",
		"moon:1,2:3:4:5",
		"wormhole:1,2",
		"wormhole:1,2:gamma",
		"dyson-sphere:1,2",
	}
	for _, s := range bad {
		if _, err := ParseObjectID(s); err == nil {
			t.Fatalf("ParseObjectID(%q) accepted malformed input", s)
		}
	}
}

func TestObjectIDStringFormat(t *testing.T) {
	cases := []struct {
		id   ObjectID
		want string
	}{
		{ObjectID{Kind: KindStar, X: 5, Y: -7}, "star:5,-7"},
		{ObjectID{Kind: KindPlanet, X: 0, Y: 0, Index: 2}, "planet:0,0:2"},
		{ObjectID{Kind: KindMoon, X: 1, Y: 2, Index: 3, SubIndex: 1}, "moon:1,2:3:1"},
		{ObjectID{Kind: KindWormhole, X: -4, Y: 9, Designation: DesignationBeta}, "wormhole:-4,9:" + DesignationBeta},
		{ObjectID{Kind: KindBlackHole, X: 10, Y: 20}, "black_hole:10,20"},
	}
	for _, c := range cases {
		if got := c.id.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}
