package resolver

import (
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/world"
)

// Scan evaluates finders for one agent position in one region. Structure
// lists are loaded once per scan and reused across steps.
type Scan struct {
	q      world.Query
	region string
	origin world.HexCoord

	structures []world.Structure
	loaded     bool
}

// NewScan prepares a scan around origin.
func NewScan(q world.Query, region string, origin world.HexCoord) *Scan {
	return &Scan{q: q, region: region, origin: origin}
}

func (s *Scan) all() []world.Structure {
	if !s.loaded {
		s.structures = s.q.Structures(s.region)
		s.loaded = true
	}
	return s.structures
}

// Find runs one step with the given capacity amount. For transfers a
// candidate needs at least amount free; for withdrawals at least amount used.
func (s *Scan) Find(step Step, amount int) (target.Target, bool) {
	switch step.Find {
	case FindSpawnOrExtension:
		return s.store(step.Action, amount, world.KindSpawn, world.KindExtension)
	case FindTower:
		return s.store(step.Action, amount, world.KindTower)
	case FindStorage:
		return s.store(step.Action, amount, world.KindStorage)
	case FindContainer:
		return s.store(step.Action, amount, world.KindContainer)
	case FindLink:
		return s.store(step.Action, amount, world.KindLink)
	case FindConstructionSite:
		return s.site()
	case FindController:
		return s.controller()
	case FindSource:
		return s.source()
	}
	return nil, false
}

func (s *Scan) store(action target.Action, amount int, kinds ...world.StructureKind) (target.Target, bool) {
	var eligible []world.Structure
	for _, st := range s.all() {
		if !hasKind(st.Kind, kinds) {
			continue
		}
		switch action {
		case target.ActionTransfer:
			if st.Store.Free() >= amount {
				eligible = append(eligible, st)
			}
		case target.ActionWithdraw:
			if st.Store.Used >= amount {
				eligible = append(eligible, st)
			}
		}
	}

	best, ok := nearest(s.origin, eligible, structurePos)
	if !ok {
		return nil, false
	}

	var (
		t   target.Target
		err error
	)
	if action == target.ActionTransfer {
		t, err = target.Transfer(best)
	} else {
		t, err = target.Fetch(best)
	}
	if err != nil {
		return nil, false
	}
	return t, true
}

func (s *Scan) site() (target.Target, bool) {
	sites := s.q.ConstructionSites(s.region)
	var containers []world.ConstructionSite
	for _, cs := range sites {
		if cs.Kind == world.KindContainer {
			containers = append(containers, cs)
		}
	}
	if len(containers) > 0 {
		sites = containers
	}
	best, ok := nearest(s.origin, sites, func(cs world.ConstructionSite) world.HexCoord { return cs.Pos })
	if !ok {
		return nil, false
	}
	return target.ForSite(best), true
}

func (s *Scan) controller() (target.Target, bool) {
	for _, st := range s.all() {
		if st.Kind == world.KindController {
			t, err := target.ForController(st)
			return t, err == nil
		}
	}
	return nil, false
}

func (s *Scan) source() (target.Target, bool) {
	var active []world.Source
	for _, src := range s.q.Sources(s.region) {
		if src.Energy > 0 {
			active = append(active, src)
		}
	}
	best, ok := nearest(s.origin, active, func(src world.Source) world.HexCoord { return src.Pos })
	if !ok {
		return nil, false
	}
	return target.ForSource(best, nil), true
}

// storage returns the first storage of the region.
func (s *Scan) storage() (world.Structure, bool) {
	for _, st := range s.all() {
		if st.Kind == world.KindStorage {
			return st, true
		}
	}
	return world.Structure{}, false
}

// nearest returns the item closest to origin. Ties keep the first scanned.
func nearest[T any](origin world.HexCoord, items []T, pos func(T) world.HexCoord) (T, bool) {
	var best T
	bestDist := -1
	for _, it := range items {
		d := world.Distance(origin, pos(it))
		if bestDist < 0 || d < bestDist {
			best, bestDist = it, d
		}
	}
	return best, bestDist >= 0
}

func structurePos(s world.Structure) world.HexCoord { return s.Pos }

func hasKind(k world.StructureKind, kinds []world.StructureKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
