package sandbox

import (
	"slices"

	"github.com/talgya/colony/internal/world"
)

var _ world.World = (*World)(nil)

// Creep returns a copy of the named creep.
func (w *World) Creep(name string) (world.Creep, bool) {
	c, ok := w.creeps[name]
	if !ok {
		return world.Creep{}, false
	}
	out := *c
	out.Body = slices.Clone(c.Body)
	return out, true
}

// Creeps lists all creeps sorted by name.
func (w *World) Creeps() []world.Creep {
	names := make([]string, 0, len(w.creeps))
	for name := range w.creeps {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]world.Creep, 0, len(names))
	for _, name := range names {
		c, _ := w.Creep(name)
		out = append(out, c)
	}
	return out
}

func (w *World) Spawn(name string) (world.Structure, bool) {
	for _, id := range w.structureOrder {
		st := w.structures[id]
		if st != nil && st.Kind == world.KindSpawn && st.Name == name {
			return *st, true
		}
	}
	return world.Structure{}, false
}

func (w *World) EnergyAvailable(region string) int {
	total := 0
	for _, st := range w.Structures(region) {
		if st.Kind == world.KindSpawn || st.Kind == world.KindExtension {
			total += st.Store.Used
		}
	}
	return total
}

func (w *World) Structures(region string) []world.Structure {
	var out []world.Structure
	for _, id := range w.structureOrder {
		if st := w.structures[id]; st != nil && st.Region == region {
			out = append(out, *st)
		}
	}
	return out
}

func (w *World) Sources(region string) []world.Source {
	var out []world.Source
	for _, id := range w.sourceOrder {
		if src := w.sources[id]; src != nil && src.Region == region {
			out = append(out, *src)
		}
	}
	return out
}

func (w *World) ConstructionSites(region string) []world.ConstructionSite {
	var out []world.ConstructionSite
	for _, id := range w.siteOrder {
		if cs := w.sites[id]; cs != nil && cs.Region == region {
			out = append(out, *cs)
		}
	}
	return out
}

func (w *World) Structure(id world.ObjectID) (world.Structure, bool) {
	st, ok := w.structures[id]
	if !ok {
		return world.Structure{}, false
	}
	return *st, true
}

func (w *World) Source(id world.ObjectID) (world.Source, bool) {
	src, ok := w.sources[id]
	if !ok {
		return world.Source{}, false
	}
	return *src, true
}

func (w *World) ConstructionSite(id world.ObjectID) (world.ConstructionSite, bool) {
	cs, ok := w.sites[id]
	if !ok {
		return world.ConstructionSite{}, false
	}
	return *cs, true
}

func (w *World) StructuresAt(region string, pos world.HexCoord) []world.Structure {
	var out []world.Structure
	for _, st := range w.Structures(region) {
		if st.Pos == pos {
			out = append(out, st)
		}
	}
	return out
}

func (w *World) HostilesPresent(region string) bool {
	return w.hostiles[region] > 0
}
