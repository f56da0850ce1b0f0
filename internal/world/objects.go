package world

// ObjectID identifies any entity in the world. IDs are stable for the
// lifetime of the entity and never reused.
type ObjectID string

// Part is one body part of a creep.
type Part uint8

const (
	PartMove Part = iota
	PartWork
	PartCarry
	PartAttack
	PartRangedAttack
	PartHeal
	PartClaim
	PartTough
)

// partCosts is the spawn energy cost of each body part.
var partCosts = [...]int{
	PartMove:         50,
	PartWork:         100,
	PartCarry:        50,
	PartAttack:       80,
	PartRangedAttack: 150,
	PartHeal:         250,
	PartClaim:        600,
	PartTough:        10,
}

// Cost returns the spawn energy cost of the part.
func (p Part) Cost() int {
	if int(p) >= len(partCosts) {
		return 0
	}
	return partCosts[p]
}

func (p Part) String() string {
	switch p {
	case PartMove:
		return "move"
	case PartWork:
		return "work"
	case PartCarry:
		return "carry"
	case PartAttack:
		return "attack"
	case PartRangedAttack:
		return "ranged_attack"
	case PartHeal:
		return "heal"
	case PartClaim:
		return "claim"
	case PartTough:
		return "tough"
	default:
		return "unknown"
	}
}

// CarryPerPart is the energy one carry part holds.
const CarryPerPart = 50

// StructureKind enumerates placed structures.
type StructureKind uint8

const (
	KindSpawn StructureKind = iota
	KindExtension
	KindStorage
	KindContainer
	KindTower
	KindLink
	KindController
	KindRoad
)

func (k StructureKind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindExtension:
		return "extension"
	case KindStorage:
		return "storage"
	case KindContainer:
		return "container"
	case KindTower:
		return "tower"
	case KindLink:
		return "link"
	case KindController:
		return "controller"
	case KindRoad:
		return "road"
	default:
		return "unknown"
	}
}

// Walkable reports whether creeps can stand on a structure of this kind.
func (k StructureKind) Walkable() bool {
	return k == KindContainer || k == KindRoad
}

// HasStore reports whether structures of this kind hold energy.
func (k StructureKind) HasStore() bool {
	switch k {
	case KindSpawn, KindExtension, KindStorage, KindContainer, KindTower, KindLink:
		return true
	}
	return false
}

// Store is an energy store with a fixed capacity.
type Store struct {
	Used     int `json:"used"`
	Capacity int `json:"capacity"`
}

// Free returns the unused capacity.
func (s Store) Free() int {
	if s.Used >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Used
}

// Full reports whether no capacity remains.
func (s Store) Full() bool { return s.Free() == 0 }

// Empty reports whether the store holds nothing.
func (s Store) Empty() bool { return s.Used == 0 }

// Structure is a snapshot of a placed structure.
type Structure struct {
	ID      ObjectID      `json:"id"`
	Kind    StructureKind `json:"kind"`
	Region  string        `json:"region"`
	Pos     HexCoord      `json:"pos"`
	Store   Store         `json:"store"`
	Hits    int           `json:"hits"`
	HitsMax int           `json:"hits_max"`

	// Spawn only.
	Name     string `json:"name,omitempty"`
	Spawning string `json:"spawning,omitempty"` // Name of the creep being spawned
}

// Damage returns how many hits the structure is missing.
func (s Structure) Damage() int {
	if s.Hits >= s.HitsMax {
		return 0
	}
	return s.HitsMax - s.Hits
}

// Source is a regenerating energy node.
type Source struct {
	ID             ObjectID `json:"id"`
	Region         string   `json:"region"`
	Pos            HexCoord `json:"pos"`
	Energy         int      `json:"energy"`
	EnergyCapacity int      `json:"energy_capacity"`
}

// ConstructionSite is a structure under construction.
type ConstructionSite struct {
	ID            ObjectID      `json:"id"`
	Kind          StructureKind `json:"kind"` // Kind of structure it will become
	Region        string        `json:"region"`
	Pos           HexCoord      `json:"pos"`
	Progress      int           `json:"progress"`
	ProgressTotal int           `json:"progress_total"`
}

// Creep is a snapshot of one spawned (or spawning) worker body.
type Creep struct {
	ID          ObjectID `json:"id"`
	Name        string   `json:"name"`
	Region      string   `json:"region"`
	Pos         HexCoord `json:"pos"`
	Store       Store    `json:"store"`
	Body        []Part   `json:"body"`
	Spawning    bool     `json:"spawning"`
	TicksToLive int      `json:"ticks_to_live"`
}

// Count returns how many parts of kind p the creep has.
func (c Creep) Count(p Part) int {
	n := 0
	for _, b := range c.Body {
		if b == p {
			n++
		}
	}
	return n
}
