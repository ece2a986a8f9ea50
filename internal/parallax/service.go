// Package parallax produces the purely decorative deep-background star
// layers. Layers are stateless: every request recomputes its cells from the
// position hash, so there is nothing to cache or evict.
package parallax

import (
	"log/slog"

	"starscape-server/internal/shared/rng"
	"starscape-server/internal/spatial"
)

// Star is one decorative background point. It never participates in
// discovery.
type Star struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Size       float64 `json:"size"`
	Brightness float64 `json:"brightness"`
}

// Layer is one depth plane of the decorative backdrop. Depth is the scroll
// factor the client applies, 0 meaning pinned to the camera.
type Layer struct {
	Depth float64 `json:"depth"`
	Stars []Star  `json:"stars"`
}

type layerDef struct {
	depth    float64
	cellSize int
	minStars int
	maxStars int
	salt     uint32
}

var layerDefs = []layerDef{
	{depth: 0.15, cellSize: 4000, minStars: 2, maxStars: 5, salt: 0x7B11E0D3},
	{depth: 0.35, cellSize: 3000, minStars: 3, maxStars: 7, salt: 0x8C23F1E5},
	{depth: 0.60, cellSize: 2400, minStars: 4, maxStars: 9, salt: 0x9D35A2F7},
}

type Service struct {
	seed   int64
	logger *slog.Logger
}

func NewService(seed int64, logger *slog.Logger) *Service {
	logger.Debug("Initializing parallax service", "layers", len(layerDefs))

	return &Service{seed: seed, logger: logger}
}

// LayersAround returns every layer's stars for the cells covering a
// width-by-height viewport centered on p.
func (s *Service) LayersAround(p spatial.Point, width, height float64) []Layer {
	layers := make([]Layer, 0, len(layerDefs))
	for _, def := range layerDefs {
		layers = append(layers, Layer{
			Depth: def.depth,
			Stars: s.starsForLayer(def, p, width, height),
		})
	}
	return layers
}

func (s *Service) starsForLayer(def layerDef, p spatial.Point, width, height float64) []Star {
	minCell := spatial.CellOf(spatial.Point{X: p.X - width/2, Y: p.Y - height/2}, def.cellSize)
	maxCell := spatial.CellOf(spatial.Point{X: p.X + width/2, Y: p.Y + height/2}, def.cellSize)

	var stars []Star
	for cy := minCell.Y; cy <= maxCell.Y; cy++ {
		for cx := minCell.X; cx <= maxCell.X; cx++ {
			ox := cx * def.cellSize
			oy := cy * def.cellSize
			r := rng.New(int64(rng.PositionHash(s.seed, ox, oy) ^ def.salt))

			count := r.NextInt(def.minStars, def.maxStars)
			for i := 0; i < count; i++ {
				stars = append(stars, Star{
					X:          float64(ox) + r.Next()*float64(def.cellSize),
					Y:          float64(oy) + r.Next()*float64(def.cellSize),
					Size:       r.NextFloat(0.4, 1.6),
					Brightness: r.NextFloat(0.2, 0.8),
				})
			}
		}
	}
	return stars
}
