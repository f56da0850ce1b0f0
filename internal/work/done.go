package work

import (
	"github.com/talgya/colony/internal/resolver"
	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/world"
)

// Done reports whether the agent should let go of its target. Fetch
// targets also flip the working flag to true once the creep is full or the
// place it was filling from has run dry.
func (e *Executor) Done(s Subject, t target.Target) bool {
	carry := s.Creep.Store

	switch t := t.(type) {
	case nil, target.Park:
		return true
	case target.Build:
		_, ok := e.world.ConstructionSite(t.ID)
		return !ok || carry.Empty()
	case target.Upgrade:
		_, ok := e.world.Structure(t.ID)
		return !ok || carry.Empty()
	case target.FetchFromSource:
		src, ok := e.world.Source(t.ID)
		if !ok {
			return true
		}
		if t.Post != nil {
			if !carry.Full() {
				return false
			}
			_, unload := resolver.PostLink(e.world, s.Creep.Region, *t.Post)
			return unload
		}
		return e.fetchDone(s, src.Energy == 0)
	}

	st, ok := e.world.Structure(t.Entity().ID)
	if !ok {
		return true
	}
	switch t.Action() {
	case target.ActionTransfer:
		return st.Store.Full() || carry.Empty()
	case target.ActionWithdraw:
		if e.fetchDone(s, st.Store.Empty()) {
			return true
		}
		if st.Kind == world.KindContainer || st.Kind == world.KindStorage {
			return st.Store.Used < e.carryLoad(s.Role)
		}
		return false
	}
	return true
}

func (e *Executor) fetchDone(s Subject, depleted bool) bool {
	carry := s.Creep.Store
	switch {
	case carry.Full():
		e.memory.SetWorking(s.Name, true)
		return true
	case depleted:
		if carry.Used > 0 {
			e.memory.SetWorking(s.Name, true)
		}
		return true
	}
	return false
}

func (e *Executor) carryLoad(r roles.Role) int {
	return max(roles.CarryUnits(r)*e.cfg.UnitCapacity, 1)
}
