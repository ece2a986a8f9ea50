// Package galaxy defines the celestial object model shared by the chunk
// generator, the discovery service, and the renderer boundary, together with
// the type catalogs the generator samples from.
package galaxy

import "starscape-server/internal/spatial"

// ObjectKind tags every discoverable object category.
type ObjectKind string

const (
	KindStar          ObjectKind = "star"
	KindPlanet        ObjectKind = "planet"
	KindMoon          ObjectKind = "moon"
	KindNebula        ObjectKind = "nebula"
	KindAsteroidField ObjectKind = "asteroid_field"
	KindWormhole      ObjectKind = "wormhole"
	KindBlackHole     ObjectKind = "black_hole"
)

// BackgroundStar is purely decorative and never discoverable.
type BackgroundStar struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Brightness float64 `json:"brightness"`
	Size       float64 `json:"size"`
	Color      string  `json:"color"`
}

type Star struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Type        string  `json:"type"`
	Radius      float64 `json:"radius"`
	IsCompanion bool    `json:"is_companion"`
	Discovered  bool    `json:"discovered"`
}

type Planet struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Type        string  `json:"type"`
	Radius      float64 `json:"radius"`
	Index       int     `json:"index"`
	OrbitRadius float64 `json:"orbit_radius"`
	OrbitAngle  float64 `json:"orbit_angle"`
	OrbitSpeed  float64 `json:"orbit_speed"`
	Moons       []*Moon `json:"moons"`
	Discovered  bool    `json:"discovered"`
}

type Moon struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Index       int     `json:"index"`
	PlanetIndex int     `json:"planet_index"`
	OrbitRadius float64 `json:"orbit_radius"`
	OrbitAngle  float64 `json:"orbit_angle"`
	OrbitSpeed  float64 `json:"orbit_speed"`
	Discovered  bool    `json:"discovered"`
}

// Comet orbits are Keplerian; positions are derived by the renderer from the
// orbital elements.
type Comet struct {
	SemiMajorAxis float64 `json:"semi_major_axis"`
	Eccentricity  float64 `json:"eccentricity"`
	Period        float64 `json:"period"`
	ArgPeriapsis  float64 `json:"arg_periapsis"`
	MeanAnomaly   float64 `json:"mean_anomaly"`
	Perihelion    float64 `json:"perihelion"`
	Aphelion      float64 `json:"aphelion"`
}

// StarSystem anchors at its primary star's position; planets, moons, and
// comets orbit relative to it.
type StarSystem struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Star      *Star     `json:"star"`
	Companion *Star     `json:"companion,omitempty"`
	Planets   []*Planet `json:"planets"`
	Comets    []*Comet  `json:"comets"`
}

type Nebula struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Type       string  `json:"type"`
	Radius     float64 `json:"radius"`
	Discovered bool    `json:"discovered"`
}

type AsteroidField struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Type       string  `json:"type"`
	Radius     float64 `json:"radius"`
	Discovered bool    `json:"discovered"`
}

// Wormhole is one endpoint of a pair. It stores only the twin's coordinates
// and the shared pair id, never a live reference, so chunks stay
// independently evictable.
type Wormhole struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	PairID      string  `json:"pair_id"`
	Designation string  `json:"designation"` // "alpha" or "beta"
	TwinX       float64 `json:"twin_x"`
	TwinY       float64 `json:"twin_y"`
	Discovered  bool    `json:"discovered"`
}

type BlackHole struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Type       string  `json:"type"`
	Radius     float64 `json:"radius"`
	Discovered bool    `json:"discovered"`
}

const (
	DesignationAlpha = "alpha"
	DesignationBeta  = "beta"
)

// Chunk owns everything generated for one grid cell. Content is immutable
// after generation except for discovery flags.
type Chunk struct {
	Coord           spatial.ChunkCoord `json:"coord"`
	BackgroundStars []BackgroundStar   `json:"background_stars"`
	Systems         []*StarSystem      `json:"systems"`
	Nebulae         []*Nebula          `json:"nebulae"`
	AsteroidFields  []*AsteroidField   `json:"asteroid_fields"`
	Wormholes       []*Wormhole        `json:"wormholes"`
	BlackHoles      []*BlackHole       `json:"black_holes"`
}
