package resolver

import "github.com/talgya/colony/internal/world"

const region = "W1N1"

// fakeWorld is a scripted world.Query.
type fakeWorld struct {
	structures []world.Structure
	sources    []world.Source
	sites      []world.ConstructionSite
	hostiles   bool
}

func (f *fakeWorld) Creep(string) (world.Creep, bool)                  { return world.Creep{}, false }
func (f *fakeWorld) Spawn(string) (world.Structure, bool)              { return world.Structure{}, false }
func (f *fakeWorld) EnergyAvailable(string) int                        { return 0 }
func (f *fakeWorld) Structures(string) []world.Structure               { return f.structures }
func (f *fakeWorld) Sources(string) []world.Source                     { return append([]world.Source(nil), f.sources...) }
func (f *fakeWorld) ConstructionSites(string) []world.ConstructionSite { return f.sites }
func (f *fakeWorld) HostilesPresent(string) bool                       { return f.hostiles }

func (f *fakeWorld) Structure(id world.ObjectID) (world.Structure, bool) {
	for _, s := range f.structures {
		if s.ID == id {
			return s, true
		}
	}
	return world.Structure{}, false
}

func (f *fakeWorld) Source(id world.ObjectID) (world.Source, bool) {
	for _, s := range f.sources {
		if s.ID == id {
			return s, true
		}
	}
	return world.Source{}, false
}

func (f *fakeWorld) ConstructionSite(id world.ObjectID) (world.ConstructionSite, bool) {
	for _, s := range f.sites {
		if s.ID == id {
			return s, true
		}
	}
	return world.ConstructionSite{}, false
}

func (f *fakeWorld) StructuresAt(_ string, pos world.HexCoord) []world.Structure {
	var out []world.Structure
	for _, s := range f.structures {
		if s.Pos == pos {
			out = append(out, s)
		}
	}
	return out
}

func at(q, r int) world.HexCoord { return world.HexCoord{Q: q, R: r} }

func store(kind world.StructureKind, id string, pos world.HexCoord, used, capacity int) world.Structure {
	return world.Structure{
		ID:      world.ObjectID(id),
		Kind:    kind,
		Region:  region,
		Pos:     pos,
		Store:   world.Store{Used: used, Capacity: capacity},
		Hits:    100,
		HitsMax: 100,
	}
}

func creepAt(pos world.HexCoord, used, capacity int) world.Creep {
	return world.Creep{
		ID:     "c1",
		Name:   "agent",
		Region: region,
		Pos:    pos,
		Store:  world.Store{Used: used, Capacity: capacity},
	}
}
