// Package work performs the action a target asks for, decides when a target
// is finished and moves creeps toward targets they cannot reach yet.
package work

import (
	"fmt"
	"log/slog"

	"github.com/talgya/colony/internal/memory"
	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/world"
)

// Config tunes the executor.
type Config struct {
	RepairPerWork int // Damage per work part that triggers an in-passing repair
	UnitCapacity  int // Energy per carry part, for carry-load checks
	ReusePath     int // Passed through to MoveToward
}

// DefaultConfig returns the standard executor settings.
func DefaultConfig() Config {
	return Config{
		RepairPerWork: 100,
		UnitCapacity:  world.CarryPerPart,
		ReusePath:     5,
	}
}

// Subject is the agent doing the work, with this tick's creep snapshot.
type Subject struct {
	Name  string
	Role  roles.Role
	Creep world.Creep
}

// Executor runs actions against the world on behalf of agents.
type Executor struct {
	world  world.World
	memory memory.Store
	cfg    Config
}

// New creates an executor.
func New(w world.World, mem memory.Store, cfg Config) *Executor {
	if cfg.UnitCapacity <= 0 {
		cfg.UnitCapacity = world.CarryPerPart
	}
	return &Executor{world: w, memory: mem, cfg: cfg}
}

// Act performs the target's action once.
func (e *Executor) Act(s Subject, t target.Target) error {
	switch t := t.(type) {
	case nil:
		return fmt.Errorf("act without target: %w", world.ErrInvalidArgs)
	case target.Park:
		return fmt.Errorf("park is not actionable: %w", world.ErrInvalidArgs)
	case target.FetchFromSource:
		return e.harvest(s, t)
	case target.Build:
		return e.world.Build(s.Name, t.ID)
	case target.Upgrade:
		return e.world.Upgrade(s.Name, t.ID)
	}

	switch t.Action() {
	case target.ActionTransfer:
		return e.world.Transfer(s.Name, t.Entity().ID)
	case target.ActionWithdraw:
		return e.world.Withdraw(s.Name, t.Entity().ID)
	}
	return fmt.Errorf("act %s: %w", t.Name(), world.ErrInvalidArgs)
}

// harvest only works from the miner post when the target has one. A
// damaged container at the post is repaired first.
func (e *Executor) harvest(s Subject, t target.FetchFromSource) error {
	if t.Post != nil {
		if s.Creep.Pos != *t.Post {
			return fmt.Errorf("%s off post %s: %w", s.Name, *t.Post, world.ErrNoPath)
		}
		if e.repairUnderfoot(s, world.KindContainer) {
			return fmt.Errorf("%s repairing container: %w", s.Name, world.ErrBusy)
		}
	}
	return e.world.Harvest(s.Name, t.ID)
}

// Approach moves the creep toward its target, or onto its post.
func (e *Executor) Approach(s Subject, t target.Target) error {
	if t == nil {
		return fmt.Errorf("approach without target: %w", world.ErrInvalidArgs)
	}
	if src, ok := t.(target.FetchFromSource); ok && src.Post != nil {
		return e.world.MoveToward(s.Name, *src.Post, world.MoveOptions{Range: 0, ReusePath: e.cfg.ReusePath})
	}
	if e.repairUnderfoot(s, world.KindRoad) {
		return fmt.Errorf("%s repairing road: %w", s.Name, world.ErrBusy)
	}
	return e.world.MoveToward(s.Name, t.Entity().Pos, world.MoveOptions{
		Range:     t.Action().Range(),
		ReusePath: e.cfg.ReusePath,
	})
}

// repairUnderfoot repairs a structure of kind under the creep once its
// damage reaches work parts * RepairPerWork. It reports whether the tick
// was spent repairing.
func (e *Executor) repairUnderfoot(s Subject, kind world.StructureKind) bool {
	if s.Creep.Store.Empty() {
		return false
	}
	threshold := roles.WorkUnits(s.Role) * e.cfg.RepairPerWork
	if threshold <= 0 {
		return false
	}
	for _, st := range e.world.StructuresAt(s.Creep.Region, s.Creep.Pos) {
		if st.Kind != kind || st.Damage() < threshold {
			continue
		}
		if err := e.world.Repair(s.Name, st.ID); err != nil {
			slog.Debug("repair failed", "agent", s.Name, "structure", st.ID, "error", err)
			return false
		}
		return true
	}
	return false
}
