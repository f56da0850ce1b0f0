// Region generation using layered simplex noise.
// Elevation ridges become walls, damp lowlands become swamp.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds region generation parameters.
type GenConfig struct {
	Radius     int     // Hex grid radius
	Seed       int64   // Random seed (0 = random)
	WallLevel  float64 // Elevation threshold for walls (0.0–1.0)
	SwampLevel float64 // Moisture threshold for swamp (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:     14,
		Seed:       0,
		WallLevel:  0.74,
		SwampLevel: 0.70,
	}
}

// GenerateRegion creates a region map with walls and swamps.
func GenerateRegion(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	wetNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
			wet := octaveNoise(wetNoise, x, y, 3, 0.09, 0.5)

			m.Set(&Hex{
				Coord:     coord,
				Terrain:   deriveTerrain(elev, wet, cfg),
				Elevation: elev,
			})
		}
	}

	return m
}

// deriveTerrain determines terrain type from noise samples.
func deriveTerrain(elev, wet float64, cfg GenConfig) Terrain {
	if elev > cfg.WallLevel {
		return TerrainWall
	}
	if wet > cfg.SwampLevel {
		return TerrainSwamp
	}
	return TerrainPlain
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, hex := range m.Hexes {
		counts[hex.Terrain]++
	}
	return counts
}
