// Package sandbox is an in-memory implementation of world.World. It keeps
// one hex region per name, applies actions immediately and advances its own
// clocks (spawn timers, regeneration, creep lifetimes, raids) once per tick.
package sandbox

import (
	"fmt"
	"slices"

	"github.com/talgya/colony/internal/world"
)

// Options tunes the simulated rules.
type Options struct {
	Region            string     // Name of the home region
	Terrain           *world.Map // Nil means a plain map of Radius
	Radius            int
	CreepLifetime     int // Ticks a spawned creep lives
	SpawnTicksPerPart int
	SpawnRegen        int // Energy a spawn regains per tick while the region is low
	SpawnRegenCap     int // Region energy below which spawns regenerate
	SourceRegenTicks  int // Sources refill on every multiple of this tick
	DecayTicks        int // Roads and containers lose hits on every multiple of this tick
	RaidEvery         int // Ticks between hostile raids; 0 disables raids
	RaidLength        int // Ticks a raid lasts without towers
}

// DefaultOptions returns rules close to the reference game.
func DefaultOptions() Options {
	return Options{
		Region:            "W1N1",
		Radius:            14,
		CreepLifetime:     1500,
		SpawnTicksPerPart: 3,
		SpawnRegen:        1,
		SpawnRegenCap:     300,
		SourceRegenTicks:  300,
		DecayTicks:        100,
		RaidLength:        20,
	}
}

// Rates of the simulated actions.
const (
	HarvestPerWork  = 2
	BuildPerWork    = 5
	UpgradePerWork  = 1
	RepairPerWork   = 100 // Hits restored per work part, for one energy each
	LinkLossPercent = 3
	TowerShotCost   = 10

	roadDecay      = 100
	containerDecay = 500
)

// defaultCapacity is the store size of each structure kind.
var defaultCapacity = map[world.StructureKind]int{
	world.KindSpawn:     300,
	world.KindExtension: 50,
	world.KindStorage:   1000000,
	world.KindContainer: 2000,
	world.KindTower:     1000,
	world.KindLink:      800,
}

var defaultHits = map[world.StructureKind]int{
	world.KindSpawn:      5000,
	world.KindExtension:  1000,
	world.KindStorage:    10000,
	world.KindContainer:  250000,
	world.KindTower:      3000,
	world.KindLink:       1000,
	world.KindController: 1,
	world.KindRoad:       5000,
}

// siteCost is the build progress needed per structure kind.
var siteCost = map[world.StructureKind]int{
	world.KindExtension: 3000,
	world.KindContainer: 5000,
	world.KindRoad:      300,
	world.KindTower:     5000,
	world.KindLink:      5000,
	world.KindStorage:   30000,
	world.KindSpawn:     15000,
}

// World holds the complete state of the simulated regions. It is not safe
// for concurrent use; the tick goroutine owns it.
type World struct {
	opts Options
	tick uint64

	maps       map[string]*world.Map
	structures map[world.ObjectID]*world.Structure
	sources    map[world.ObjectID]*world.Source
	sites      map[world.ObjectID]*world.ConstructionSite
	creeps     map[string]*world.Creep

	// Insertion order keeps scans deterministic.
	structureOrder []world.ObjectID
	sourceOrder    []world.ObjectID
	siteOrder      []world.ObjectID

	spawnTimers map[string]int // Creep name -> ticks until it leaves the spawn
	fatigue     map[string]int
	routes      map[string]*route      // Creep name -> reusable path
	cooldowns   map[world.ObjectID]int // Link cooldowns
	upgrades    map[world.ObjectID]int // Controller progress
	hostiles    map[string]int         // Region -> remaining raid ticks
	nextID      int

	stats Stats
}

// Stats counts what happened in the sandbox since it was created.
type Stats struct {
	Harvested int `json:"harvested"`
	Built     int `json:"built"`
	Upgraded  int `json:"upgraded"`
	Repaired  int `json:"repaired"`
	Spawned   int `json:"spawned"`
	Died      int `json:"died"`
	Raids     int `json:"raids"`
	LinkLoss  int `json:"link_loss"`
}

// New creates an empty sandbox with its home region.
func New(opts Options) *World {
	def := DefaultOptions()
	if opts.Region == "" {
		opts.Region = def.Region
	}
	if opts.Radius <= 0 {
		opts.Radius = def.Radius
	}
	if opts.CreepLifetime <= 0 {
		opts.CreepLifetime = def.CreepLifetime
	}
	if opts.SpawnTicksPerPart <= 0 {
		opts.SpawnTicksPerPart = def.SpawnTicksPerPart
	}
	if opts.SourceRegenTicks <= 0 {
		opts.SourceRegenTicks = def.SourceRegenTicks
	}
	if opts.RaidLength <= 0 {
		opts.RaidLength = def.RaidLength
	}

	w := &World{
		opts:        opts,
		maps:        make(map[string]*world.Map),
		structures:  make(map[world.ObjectID]*world.Structure),
		sources:     make(map[world.ObjectID]*world.Source),
		sites:       make(map[world.ObjectID]*world.ConstructionSite),
		creeps:      make(map[string]*world.Creep),
		spawnTimers: make(map[string]int),
		fatigue:     make(map[string]int),
		routes:      make(map[string]*route),
		cooldowns:   make(map[world.ObjectID]int),
		upgrades:    make(map[world.ObjectID]int),
		hostiles:    make(map[string]int),
	}
	terrain := opts.Terrain
	if terrain == nil {
		terrain = world.NewPlainMap(opts.Radius)
	}
	w.maps[opts.Region] = terrain
	return w
}

// Region returns the name of the home region.
func (w *World) Region() string { return w.opts.Region }

// Terrain returns the map of a region.
func (w *World) Terrain(region string) *world.Map { return w.maps[region] }

// Stats returns the running counters.
func (w *World) Stats() Stats { return w.stats }

// ControllerProgress returns the energy upgraded into a controller.
func (w *World) ControllerProgress(id world.ObjectID) int { return w.upgrades[id] }

func (w *World) newID(prefix string) world.ObjectID {
	w.nextID++
	return world.ObjectID(fmt.Sprintf("%s-%d", prefix, w.nextID))
}

// AddStructure places a structure. Zero fields get kind defaults; the
// assigned ID is returned.
func (w *World) AddStructure(s world.Structure) world.ObjectID {
	if s.ID == "" {
		s.ID = w.newID(s.Kind.String())
	}
	if s.Region == "" {
		s.Region = w.opts.Region
	}
	if s.HitsMax == 0 {
		s.HitsMax = defaultHits[s.Kind]
		if s.Hits == 0 {
			s.Hits = s.HitsMax
		}
	}
	if s.Kind.HasStore() && s.Store.Capacity == 0 {
		s.Store.Capacity = defaultCapacity[s.Kind]
	}
	w.structures[s.ID] = &s
	w.structureOrder = append(w.structureOrder, s.ID)
	return s.ID
}

// AddSource places an energy source, full unless Energy is set.
func (w *World) AddSource(src world.Source) world.ObjectID {
	if src.ID == "" {
		src.ID = w.newID("source")
	}
	if src.Region == "" {
		src.Region = w.opts.Region
	}
	if src.EnergyCapacity == 0 {
		src.EnergyCapacity = 3000
		if src.Energy == 0 {
			src.Energy = src.EnergyCapacity
		}
	}
	w.sources[src.ID] = &src
	w.sourceOrder = append(w.sourceOrder, src.ID)
	return src.ID
}

// AddSite places a construction site.
func (w *World) AddSite(cs world.ConstructionSite) world.ObjectID {
	if cs.ID == "" {
		cs.ID = w.newID("site")
	}
	if cs.Region == "" {
		cs.Region = w.opts.Region
	}
	if cs.ProgressTotal == 0 {
		cs.ProgressTotal = siteCost[cs.Kind]
		if cs.ProgressTotal == 0 {
			cs.ProgressTotal = 1000
		}
	}
	w.sites[cs.ID] = &cs
	w.siteOrder = append(w.siteOrder, cs.ID)
	return cs.ID
}

// AddCreep places a creep that has already finished spawning.
func (w *World) AddCreep(c world.Creep) world.ObjectID {
	if c.ID == "" {
		c.ID = w.newID("creep")
	}
	if c.Region == "" {
		c.Region = w.opts.Region
	}
	if c.Store.Capacity == 0 {
		c.Store.Capacity = c.Count(world.PartCarry) * world.CarryPerPart
	}
	if c.TicksToLive == 0 {
		c.TicksToLive = w.opts.CreepLifetime
	}
	c.Body = slices.Clone(c.Body)
	w.creeps[c.Name] = &c
	return c.ID
}

// SetStore overwrites the energy held by a structure.
func (w *World) SetStore(id world.ObjectID, used int) {
	if st, ok := w.structures[id]; ok {
		st.Store.Used = min(used, st.Store.Capacity)
	}
}

// SetHits overwrites the hits of a structure.
func (w *World) SetHits(id world.ObjectID, hits int) {
	if st, ok := w.structures[id]; ok {
		st.Hits = min(hits, st.HitsMax)
	}
}

// SetCreepEnergy overwrites the energy carried by a creep.
func (w *World) SetCreepEnergy(name string, used int) {
	if c, ok := w.creeps[name]; ok {
		c.Store.Used = min(used, c.Store.Capacity)
	}
}

// SetSourceEnergy overwrites the energy left in a source.
func (w *World) SetSourceEnergy(id world.ObjectID, energy int) {
	if src, ok := w.sources[id]; ok {
		src.Energy = min(energy, src.EnergyCapacity)
	}
}

// SetHostiles starts a raid of the given length in a region, or ends it
// when ticks is zero.
func (w *World) SetHostiles(region string, ticks int) {
	if ticks <= 0 {
		delete(w.hostiles, region)
		return
	}
	w.hostiles[region] = ticks
}

// Kill removes a creep as if its lifetime ran out.
func (w *World) Kill(name string) {
	w.removeCreep(name)
	w.stats.Died++
}

func (w *World) removeCreep(name string) {
	delete(w.creeps, name)
	delete(w.spawnTimers, name)
	delete(w.fatigue, name)
	delete(w.routes, name)
	for _, st := range w.structures {
		if st.Kind == world.KindSpawn && st.Spawning == name {
			st.Spawning = ""
		}
	}
}
