package world

// Action ranges, in hexes.
const (
	RangeAdjacent = 1 // harvest, transfer, withdraw
	RangeWork     = 3 // build, upgrade, repair
)

// MoveOptions tunes a MoveToward request.
type MoveOptions struct {
	Range     int // Stop once within this many hexes of the goal
	ReusePath int // Ticks a computed path may be reused; 0 recomputes every tick
}

// Query is read access to the world. Every call returns a fresh snapshot.
type Query interface {
	// Creep returns the creep with the given name, including one still spawning.
	Creep(name string) (Creep, bool)
	// Spawn returns the spawn structure with the given name.
	Spawn(name string) (Structure, bool)
	// EnergyAvailable is the energy held by all spawns and extensions of a region.
	EnergyAvailable(region string) int

	Structures(region string) []Structure
	Sources(region string) []Source
	ConstructionSites(region string) []ConstructionSite

	Structure(id ObjectID) (Structure, bool)
	Source(id ObjectID) (Source, bool)
	ConstructionSite(id ObjectID) (ConstructionSite, bool)

	// StructuresAt lists the structures occupying one hex.
	StructuresAt(region string, pos HexCoord) []Structure
	HostilesPresent(region string) bool
}

// Actions change the world on behalf of a named creep. Each call either
// completes synchronously or fails with one of the Err* kinds.
type Actions interface {
	SpawnCreep(spawn ObjectID, body []Part, name string) error
	MoveToward(creep string, pos HexCoord, opts MoveOptions) error
	Harvest(creep string, source ObjectID) error
	Build(creep string, site ObjectID) error
	Upgrade(creep string, controller ObjectID) error
	Transfer(creep string, to ObjectID) error
	Withdraw(creep string, from ObjectID) error
	Repair(creep string, structure ObjectID) error
	Suicide(creep string) error

	// TransferEnergy moves energy between two link structures.
	TransferEnergy(from, to ObjectID) error
}

// World is the full surface the agents run against.
type World interface {
	Query
	Actions
}
