package spatial

import "math"

// ChunkCoord identifies a chunk by its integer grid coordinates. It is a
// comparable value type so it can key maps directly.
type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// AreaCoord identifies a macro-area on the region grid.
type AreaCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellCoord identifies a coarse lookup-cache cell.
type CellCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// FloorDiv divides rounding toward negative infinity. b must be positive.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// ChunkOf returns the chunk containing the world position.
func ChunkOf(p Point, size int) ChunkCoord {
	return ChunkCoord{
		X: FloorDiv(int(math.Floor(p.X)), size),
		Y: FloorDiv(int(math.Floor(p.Y)), size),
	}
}

// Origin returns the world coordinates of the chunk's lower corner.
func (c ChunkCoord) Origin(size int) (int, int) {
	return c.X * size, c.Y * size
}

// Center returns the world-space center of the chunk.
func (c ChunkCoord) Center(size int) Point {
	ox, oy := c.Origin(size)
	half := float64(size) / 2
	return Point{X: float64(ox) + half, Y: float64(oy) + half}
}

// Window enumerates the (2r+1)^2 chunk coordinates centered on c, row by row.
func Window(c ChunkCoord, radius int) []ChunkCoord {
	side := 2*radius + 1
	coords := make([]ChunkCoord, 0, side*side)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			coords = append(coords, ChunkCoord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return coords
}

// Neighborhood enumerates the chunks within radius of c, excluding c itself.
func Neighborhood(c ChunkCoord, radius int) []ChunkCoord {
	coords := make([]ChunkCoord, 0, (2*radius+1)*(2*radius+1)-1)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			coords = append(coords, ChunkCoord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return coords
}

// AreaOf returns the macro-area containing the world position.
func AreaOf(p Point, areaSize int) AreaCoord {
	return AreaCoord{
		X: FloorDiv(int(math.Floor(p.X)), areaSize),
		Y: FloorDiv(int(math.Floor(p.Y)), areaSize),
	}
}

// Origin returns the world coordinates of the macro-area's lower corner.
func (a AreaCoord) Origin(areaSize int) (int, int) {
	return a.X * areaSize, a.Y * areaSize
}

// Center returns the world-space center of the macro-area.
func (a AreaCoord) Center(areaSize int) Point {
	ox, oy := a.Origin(areaSize)
	half := float64(areaSize) / 2
	return Point{X: float64(ox) + half, Y: float64(oy) + half}
}

// CellOf returns the lookup-cache cell containing the world position.
func CellOf(p Point, cellSize int) CellCoord {
	return CellCoord{
		X: FloorDiv(int(math.Floor(p.X)), cellSize),
		Y: FloorDiv(int(math.Floor(p.Y)), cellSize),
	}
}
