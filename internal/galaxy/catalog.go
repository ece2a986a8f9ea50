package galaxy

import "starscape-server/internal/shared/rng"

// The tables below are game-balance data ported as configuration. Every
// cumulative-probability selection has an explicit fallback so a
// floating-point roll landing exactly on the boundary can never fall through
// without a result.

// StarTypeDef describes one star class: its rarity weight, visual range,
// and how it skews the planet-type distribution of its system.
type StarTypeDef struct {
	Key       string
	Name      string
	Weight    float64
	MinRadius float64
	MaxRadius float64
	Color     string
	// PlanetModifiers multiplies planet-type weights; absent keys are 1.0.
	PlanetModifiers map[string]float64
}

var StarTypes = []StarTypeDef{
	{
		Key: "yellow-dwarf", Name: "Yellow Dwarf", Weight: 28,
		MinRadius: 24, MaxRadius: 34, Color: "#ffdd66",
		PlanetModifiers: map[string]float64{"terran": 1.5, "ocean": 1.3},
	},
	{
		Key: "orange-dwarf", Name: "Orange Dwarf", Weight: 22,
		MinRadius: 20, MaxRadius: 28, Color: "#ffaa44",
		PlanetModifiers: map[string]float64{"rocky": 1.2, "desert": 1.2},
	},
	{
		Key: "red-dwarf", Name: "Red Dwarf", Weight: 20,
		MinRadius: 14, MaxRadius: 22, Color: "#ff6644",
		PlanetModifiers: map[string]float64{"frozen": 1.5, "rocky": 1.3, "gas-giant": 0.7},
	},
	{
		Key: "white-star", Name: "White Star", Weight: 11,
		MinRadius: 26, MaxRadius: 38, Color: "#eeeeff",
		PlanetModifiers: map[string]float64{"desert": 1.3, "ocean": 0.8},
	},
	{
		Key: "blue-giant", Name: "Blue Giant", Weight: 8,
		MinRadius: 40, MaxRadius: 60, Color: "#88bbff",
		PlanetModifiers: map[string]float64{"volcanic": 1.8, "desert": 1.6, "ocean": 0.4, "frozen": 0.3},
	},
	{
		Key: "red-giant", Name: "Red Giant", Weight: 6,
		MinRadius: 50, MaxRadius: 80, Color: "#ff4433",
		PlanetModifiers: map[string]float64{"volcanic": 1.4, "frozen": 0.6, "terran": 0.5},
	},
	{
		Key: "neutron-star", Name: "Neutron Star", Weight: 3,
		MinRadius: 8, MaxRadius: 12, Color: "#ccddff",
		PlanetModifiers: map[string]float64{"exotic": 3.0, "rocky": 2.0, "ocean": 0.2, "terran": 0.1, "gas-giant": 0.5},
	},
	{
		Key: "white-dwarf", Name: "White Dwarf", Weight: 2,
		MinRadius: 9, MaxRadius: 14, Color: "#ffffff",
		PlanetModifiers: map[string]float64{"frozen": 1.6, "exotic": 1.5, "terran": 0.3},
	},
}

var starTypesByKey = indexStarTypes()

func indexStarTypes() map[string]StarTypeDef {
	m := make(map[string]StarTypeDef, len(StarTypes))
	for _, d := range StarTypes {
		m[d.Key] = d
	}
	return m
}

// StarTypeFor resolves a star-type key; unknown keys are fatal build-data
// mistakes.
func StarTypeFor(key string) StarTypeDef {
	d, ok := starTypesByKey[key]
	if !ok {
		panic("galaxy: unknown star type " + key)
	}
	return d
}

// PickStarType samples the rarity table by cumulative probability.
func PickStarType(r *rng.ChunkRandom) StarTypeDef {
	var total float64
	for _, d := range StarTypes {
		total += d.Weight
	}
	roll := r.Next() * total
	var cum float64
	for _, d := range StarTypes {
		cum += d.Weight
		if roll < cum {
			return d
		}
	}
	return StarTypes[0]
}

// companionBias shrinks the weight of classes at least as large as the
// primary, so binary companions skew small.
var companionSmallClasses = map[string]bool{
	"red-dwarf": true, "orange-dwarf": true, "white-dwarf": true, "neutron-star": true,
}

// PickCompanionType samples a companion class with weights dependent on the
// primary: companions are usually smaller than their primary.
func PickCompanionType(r *rng.ChunkRandom, primary string) StarTypeDef {
	var total float64
	weights := make([]float64, len(StarTypes))
	for i, d := range StarTypes {
		w := d.Weight
		if !companionSmallClasses[d.Key] {
			w *= 0.25
		}
		if d.Key == primary {
			w *= 0.5
		}
		weights[i] = w
		total += w
	}
	roll := r.Next() * total
	var cum float64
	for i, d := range StarTypes {
		cum += weights[i]
		if roll < cum {
			return d
		}
	}
	return StarTypeFor("red-dwarf")
}

// PlanetTypeDef describes one planet class.
type PlanetTypeDef struct {
	Key        string
	Name       string
	Rarity     float64 // global rarity weight
	MinRadius  float64
	MaxRadius  float64
	MoonChance float64
	MaxMoons   int
}

var PlanetTypes = []PlanetTypeDef{
	{Key: "rocky", Name: "Rocky Planet", Rarity: 1.0, MinRadius: 6, MaxRadius: 14, MoonChance: 0.30, MaxMoons: 1},
	{Key: "desert", Name: "Desert Planet", Rarity: 0.9, MinRadius: 7, MaxRadius: 15, MoonChance: 0.25, MaxMoons: 1},
	{Key: "terran", Name: "Terran World", Rarity: 0.6, MinRadius: 9, MaxRadius: 16, MoonChance: 0.50, MaxMoons: 2},
	{Key: "ocean", Name: "Ocean World", Rarity: 0.6, MinRadius: 9, MaxRadius: 16, MoonChance: 0.50, MaxMoons: 2},
	{Key: "volcanic", Name: "Volcanic Planet", Rarity: 0.7, MinRadius: 7, MaxRadius: 14, MoonChance: 0.25, MaxMoons: 1},
	{Key: "frozen", Name: "Frozen Planet", Rarity: 0.8, MinRadius: 6, MaxRadius: 14, MoonChance: 0.25, MaxMoons: 1},
	{Key: "gas-giant", Name: "Gas Giant", Rarity: 0.7, MinRadius: 20, MaxRadius: 36, MoonChance: 0.80, MaxMoons: 4},
	{Key: "ice-giant", Name: "Ice Giant", Rarity: 0.5, MinRadius: 16, MaxRadius: 28, MoonChance: 0.60, MaxMoons: 3},
	{Key: "exotic", Name: "Exotic World", Rarity: 0.2, MinRadius: 6, MaxRadius: 18, MoonChance: 0.20, MaxMoons: 1},
}

var planetTypesByKey = indexPlanetTypes()

func indexPlanetTypes() map[string]PlanetTypeDef {
	m := make(map[string]PlanetTypeDef, len(PlanetTypes))
	for _, d := range PlanetTypes {
		m[d.Key] = d
	}
	return m
}

func PlanetTypeFor(key string) PlanetTypeDef {
	d, ok := planetTypesByKey[key]
	if !ok {
		panic("galaxy: unknown planet type " + key)
	}
	return d
}

// planetBandWeights is the base distribution per normalized orbital-distance
// band, from very close (index 0) to far (index 3).
var planetBandWeights = [4]map[string]float64{
	{"volcanic": 3.0, "rocky": 2.5, "desert": 2.0, "exotic": 0.6},
	{"rocky": 2.0, "desert": 1.8, "terran": 2.2, "ocean": 1.8, "volcanic": 0.8, "exotic": 0.4},
	{"terran": 1.2, "ocean": 1.2, "gas-giant": 2.4, "ice-giant": 1.2, "rocky": 0.8, "exotic": 0.4},
	{"frozen": 2.6, "ice-giant": 2.2, "gas-giant": 1.4, "rocky": 0.6, "exotic": 0.6},
}

// PickPlanetType combines the distance-band base distribution, the star
// type's modifier table, and each type's global rarity, then samples the
// normalized result. Falls back to rocky at the distribution boundary.
func PickPlanetType(r *rng.ChunkRandom, band int, starType string) PlanetTypeDef {
	if band < 0 {
		band = 0
	}
	if band > 3 {
		band = 3
	}

	modifiers := StarTypeFor(starType).PlanetModifiers

	var total float64
	weights := make([]float64, len(PlanetTypes))
	for i, d := range PlanetTypes {
		w := planetBandWeights[band][d.Key] * d.Rarity
		if mod, ok := modifiers[d.Key]; ok {
			w *= mod
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return PlanetTypeFor("rocky")
	}

	roll := r.Next() * total
	var cum float64
	for i, d := range PlanetTypes {
		cum += weights[i]
		if roll < cum {
			return d
		}
	}
	return PlanetTypeFor("rocky")
}

// NebulaTypeDef describes one nebula class.
type NebulaTypeDef struct {
	Key    string
	Name   string
	Weight float64
}

var NebulaTypes = []NebulaTypeDef{
	{Key: "emission", Name: "Emission Nebula", Weight: 35},
	{Key: "reflection", Name: "Reflection Nebula", Weight: 30},
	{Key: "dark", Name: "Dark Nebula", Weight: 20},
	{Key: "supernova-remnant", Name: "Supernova Remnant", Weight: 10},
	{Key: "planetary", Name: "Planetary Nebula", Weight: 5},
}

func PickNebulaType(r *rng.ChunkRandom) NebulaTypeDef {
	var total float64
	for _, d := range NebulaTypes {
		total += d.Weight
	}
	roll := r.Next() * total
	var cum float64
	for _, d := range NebulaTypes {
		cum += d.Weight
		if roll < cum {
			return d
		}
	}
	return NebulaTypes[0]
}

var nebulaTypesByKey = func() map[string]NebulaTypeDef {
	m := make(map[string]NebulaTypeDef, len(NebulaTypes))
	for _, d := range NebulaTypes {
		m[d.Key] = d
	}
	return m
}()

func NebulaTypeFor(key string) NebulaTypeDef {
	d, ok := nebulaTypesByKey[key]
	if !ok {
		panic("galaxy: unknown nebula type " + key)
	}
	return d
}

// AsteroidFieldTypes is uniform-sampled; composition only matters to the
// renderer and scan summaries.
var AsteroidFieldTypes = []string{"metallic", "carbonaceous", "icy", "silicate"}

// BlackHoleTypeDef describes one black-hole class.
type BlackHoleTypeDef struct {
	Key       string
	Name      string
	Weight    float64
	MinRadius float64
	MaxRadius float64
}

var BlackHoleTypes = []BlackHoleTypeDef{
	{Key: "stellar", Name: "Stellar Black Hole", Weight: 85, MinRadius: 20, MaxRadius: 40},
	{Key: "intermediate", Name: "Intermediate Black Hole", Weight: 13, MinRadius: 40, MaxRadius: 70},
	{Key: "supermassive", Name: "Supermassive Black Hole", Weight: 2, MinRadius: 70, MaxRadius: 120},
}

func PickBlackHoleType(r *rng.ChunkRandom) BlackHoleTypeDef {
	var total float64
	for _, d := range BlackHoleTypes {
		total += d.Weight
	}
	roll := r.Next() * total
	var cum float64
	for _, d := range BlackHoleTypes {
		cum += d.Weight
		if roll < cum {
			return d
		}
	}
	return BlackHoleTypes[0]
}

// BackgroundStarColors is the decorative palette, weighted toward white.
var BackgroundStarColors = []string{
	"#ffffff", "#ffffff", "#ffffff", "#ffeedd", "#ddeeff", "#ffddcc", "#ccddff",
}
