package world

import "fmt"

// Terrain types for hex tiles in a region.
type Terrain uint8

const (
	TerrainPlain Terrain = iota // Walkable at normal speed
	TerrainSwamp                // Walkable, slow going
	TerrainWall                 // Impassable
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlain:
		return "plain"
	case TerrainSwamp:
		return "swamp"
	case TerrainWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Hex represents a single tile of a region.
type Hex struct {
	Coord     HexCoord `json:"coord"`
	Terrain   Terrain  `json:"terrain"`
	Elevation float64  `json:"elevation"` // 0.0 (floor) to 1.0 (ridge), set by generation
}

// Map holds the hex grid of one region.
type Map struct {
	Hexes  map[HexCoord]*Hex `json:"-"` // All hexes keyed by coordinate
	Radius int               `json:"radius"`
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Hexes:  make(map[HexCoord]*Hex),
		Radius: radius,
	}
}

// NewPlainMap creates a fully walkable map of the given radius.
func NewPlainMap(radius int) *Map {
	m := NewMap(radius)
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			c := HexCoord{Q: q, R: r}
			if m.InBounds(c) {
				m.Set(&Hex{Coord: c, Terrain: TerrainPlain})
			}
		}
	}
	return m
}

// Get returns the hex at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Hex {
	return m.Hexes[coord]
}

// Set places a hex at the given coordinate.
func (m *Map) Set(hex *Hex) {
	m.Hexes[hex.Coord] = hex
}

// Clear forces the hex at coord (and optionally its ring) to plain terrain.
func (m *Map) Clear(coord HexCoord, ring int) {
	for c, hex := range m.Hexes {
		if Distance(c, coord) <= ring {
			hex.Terrain = TerrainPlain
		}
	}
}

// Walkable reports whether terrain at coord can be entered.
func (m *Map) Walkable(coord HexCoord) bool {
	hex := m.Get(coord)
	return hex != nil && hex.Terrain != TerrainWall
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return Distance(coord, HexCoord{}) <= m.Radius
}

// HexCount returns the total number of hexes in the map.
func (m *Map) HexCount() int {
	return len(m.Hexes)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d)", m.Radius, m.HexCount())
}
