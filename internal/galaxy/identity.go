package galaxy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ObjectID is the stable identity of a discoverable object. It is a
// comparable value type, so discovery maps key on it directly. For
// orbit-bound objects the position is the floored position of the ultimate
// non-orbiting ancestor (the system's primary star) plus ordinal indices;
// for wormholes it is the endpoint position plus the pair designation.
// Everything in it is recomputable after the owning chunk has been evicted.
type ObjectID struct {
	Kind        ObjectKind
	X           int
	Y           int
	Index       int    // planet ordinal, or the moon's planet ordinal
	SubIndex    int    // moon ordinal
	Designation string // wormhole endpoints only
}

func StarID(s *Star) ObjectID {
	return ObjectID{Kind: KindStar, X: floor(s.X), Y: floor(s.Y)}
}

func PlanetID(sys *StarSystem, p *Planet) ObjectID {
	return ObjectID{Kind: KindPlanet, X: floor(sys.X), Y: floor(sys.Y), Index: p.Index}
}

func MoonID(sys *StarSystem, m *Moon) ObjectID {
	return ObjectID{Kind: KindMoon, X: floor(sys.X), Y: floor(sys.Y), Index: m.PlanetIndex, SubIndex: m.Index}
}

func NebulaID(n *Nebula) ObjectID {
	return ObjectID{Kind: KindNebula, X: floor(n.X), Y: floor(n.Y)}
}

func AsteroidFieldID(f *AsteroidField) ObjectID {
	return ObjectID{Kind: KindAsteroidField, X: floor(f.X), Y: floor(f.Y)}
}

func WormholeID(w *Wormhole) ObjectID {
	return ObjectID{Kind: KindWormhole, X: floor(w.X), Y: floor(w.Y), Designation: w.Designation}
}

func BlackHoleID(b *BlackHole) ObjectID {
	return ObjectID{Kind: KindBlackHole, X: floor(b.X), Y: floor(b.Y)}
}

// String is the canonical text encoding used at the persistence boundary
// and in API payloads.
func (id ObjectID) String() string {
	s := fmt.Sprintf("%s:%d,%d", id.Kind, id.X, id.Y)
	switch id.Kind {
	case KindPlanet:
		s += fmt.Sprintf(":%d", id.Index)
	case KindMoon:
		s += fmt.Sprintf(":%d:%d", id.Index, id.SubIndex)
	case KindWormhole:
		s += ":" + id.Designation
	}
	return s
}

// ParseObjectID is the inverse of String.
func ParseObjectID(s string) (ObjectID, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return ObjectID{}, fmt.Errorf("malformed object id %q", s)
	}

	kind := ObjectKind(parts[0])
	x, y, err := parseCoords(parts[1])
	if err != nil {
		return ObjectID{}, fmt.Errorf("malformed object id %q: %w", s, err)
	}

	id := ObjectID{Kind: kind, X: x, Y: y}
	switch kind {
	case KindStar, KindNebula, KindAsteroidField, KindBlackHole:
		if len(parts) != 2 {
			return ObjectID{}, fmt.Errorf("malformed object id %q", s)
		}
	case KindPlanet:
		if len(parts) != 3 {
			return ObjectID{}, fmt.Errorf("malformed object id %q", s)
		}
		if id.Index, err = strconv.Atoi(parts[2]); err != nil {
			return ObjectID{}, fmt.Errorf("malformed object id %q: %w", s, err)
		}
	case KindMoon:
		if len(parts) != 4 {
			return ObjectID{}, fmt.Errorf("malformed object id %q", s)
		}
		if id.Index, err = strconv.Atoi(parts[2]); err != nil {
			return ObjectID{}, fmt.Errorf("malformed object id %q: %w", s, err)
		}
		if id.SubIndex, err = strconv.Atoi(parts[3]); err != nil {
			return ObjectID{}, fmt.Errorf("malformed object id %q: %w", s, err)
		}
	case KindWormhole:
		if len(parts) != 3 || (parts[2] != DesignationAlpha && parts[2] != DesignationBeta) {
			return ObjectID{}, fmt.Errorf("malformed object id %q", s)
		}
		id.Designation = parts[2]
	default:
		return ObjectID{}, fmt.Errorf("unknown object kind %q", parts[0])
	}

	return id, nil
}

func parseCoords(s string) (int, int, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("missing coordinate pair")
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func floor(v float64) int {
	return int(math.Floor(v))
}
