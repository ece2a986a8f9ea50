package region

// Multipliers bias per-category spawn probability inside a region. 1.0 is
// neutral; the chunk generator multiplies its base rolls by these.
type Multipliers struct {
	StarSystem    float64 `json:"star_system"`
	Nebula        float64 `json:"nebula"`
	AsteroidField float64 `json:"asteroid_field"`
	Wormhole      float64 `json:"wormhole"`
	BlackHole     float64 `json:"black_hole"`
}

// Definition is one entry of the closed biome catalog. Hue is consumed only
// by the external renderer.
type Definition struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Multipliers Multipliers `json:"multipliers"`
	Hue         float64     `json:"hue"`
	rarity      float64
}

// BaselineKey is the fallback classification when no region center is in
// search range.
const BaselineKey = "deep-void"

// Catalog is ordered; weighted sampling iterates it in this order so the
// selection sequence is deterministic. The numeric weights are game-balance
// data, not structure.
var Catalog = []Definition{
	{
		Key:  BaselineKey,
		Name: "Deep Void",
		Multipliers: Multipliers{
			StarSystem: 1.0, Nebula: 1.0, AsteroidField: 1.0, Wormhole: 1.0, BlackHole: 1.0,
		},
		Hue:    230,
		rarity: 30,
	},
	{
		Key:  "stellar-nursery",
		Name: "Stellar Nursery",
		Multipliers: Multipliers{
			StarSystem: 1.8, Nebula: 1.4, AsteroidField: 0.9, Wormhole: 1.0, BlackHole: 1.2,
		},
		Hue:    345,
		rarity: 20,
	},
	{
		Key:  "nebular-expanse",
		Name: "Nebular Expanse",
		Multipliers: Multipliers{
			StarSystem: 0.7, Nebula: 2.5, AsteroidField: 0.8, Wormhole: 1.2, BlackHole: 0.6,
		},
		Hue:    285,
		rarity: 16,
	},
	{
		Key:  "shattered-belt",
		Name: "Shattered Belt",
		Multipliers: Multipliers{
			StarSystem: 0.8, Nebula: 0.6, AsteroidField: 2.4, Wormhole: 0.8, BlackHole: 0.8,
		},
		Hue:    30,
		rarity: 15,
	},
	{
		Key:  "ancient-reach",
		Name: "Ancient Reach",
		Multipliers: Multipliers{
			StarSystem: 0.9, Nebula: 1.2, AsteroidField: 0.7, Wormhole: 3.0, BlackHole: 1.0,
		},
		Hue:    160,
		rarity: 11,
	},
	{
		// Star-dense core regions scale black holes up rather than down.
		Key:  "galactic-core",
		Name: "Galactic Core",
		Multipliers: Multipliers{
			StarSystem: 2.2, Nebula: 0.9, AsteroidField: 0.6, Wormhole: 1.4, BlackHole: 2.5,
		},
		Hue:    50,
		rarity: 8,
	},
}

var catalogByKey = func() map[string]Definition {
	m := make(map[string]Definition, len(Catalog))
	for _, d := range Catalog {
		m[d.Key] = d
	}
	return m
}()

// DefinitionFor resolves a catalog key. The catalog is closed and fixed at
// build time; an unknown key is a build-data mistake, not a runtime
// condition, so it aborts loudly.
func DefinitionFor(key string) Definition {
	d, ok := catalogByKey[key]
	if !ok {
		panic("region: unknown region type " + key)
	}
	return d
}
