// Per-tick agent behavior. Every tick each agent checks for hostiles,
// verifies its creep still exists and then advances one state.
package agents

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/colony/internal/resolver"
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

// Driver runs agents against one world.
type Driver struct {
	world    world.World
	resolver *resolver.Resolver
	executor *work.Executor
	spawn    string // Name of the spawn that builds bodies
}

// NewDriver creates a driver that spawns from the named spawn.
func NewDriver(w world.World, r *resolver.Resolver, ex *work.Executor, spawn string) *Driver {
	return &Driver{world: w, resolver: r, executor: ex, spawn: spawn}
}

// Run advances one agent by one tick and returns events worth logging.
func (d *Driver) Run(a *Agent) []string {
	var events []string

	if d.world.HostilesPresent(a.Region) {
		if a.State != StateWaitingForSafe {
			if _, ok := d.world.Creep(a.Name); ok {
				if err := d.world.Suicide(a.Name); err != nil {
					slog.Warn("suicide failed", "agent", a.Name, "error", err)
				}
			}
			a.reset(StateWaitingForSafe)
			events = append(events, fmt.Sprintf("%s retreats, hostiles in %s", a.Name, a.Region))
		}
		return events
	}
	if a.State == StateWaitingForSafe {
		a.State = StateIdle
		events = append(events, fmt.Sprintf("%s resumes, %s is safe", a.Name, a.Region))
	}

	creep, exists := d.world.Creep(a.Name)
	if !exists && a.State != StateNotExist {
		if a.Bound() {
			events = append(events, fmt.Sprintf("%s lost its creep", a.Name))
		}
		a.reset(StateNotExist)
	}

	switch a.State {
	case StateNotExist:
		if exists {
			if creep.Spawning {
				a.State = StateSpawning
			} else {
				a.EntityID = creep.ID
				a.State = StateIdle
				events = append(events, fmt.Sprintf("%s adopted %s", a.Name, creep.ID))
			}
			return events
		}
		if err := d.requestSpawn(a); err != nil {
			slog.Debug("spawn deferred", "agent", a.Name, "error", err)
			return events
		}
		a.State = StateSpawning
		events = append(events, fmt.Sprintf("%s spawning as %s", a.Name, a.Role))

	case StateSpawning:
		if creep.Spawning {
			return events
		}
		a.EntityID = creep.ID
		events = append(events, fmt.Sprintf("%s spawned at %s", a.Name, creep.Pos))
		d.engage(a, creep)

	case StateIdle:
		d.engage(a, creep)

	case StateOnWay:
		s := d.subject(a, creep)
		if d.executor.Done(s, a.Target) {
			d.engage(a, creep)
			return events
		}
		d.attempt(a, s)

	case StateWorking:
		s := d.subject(a, creep)
		if d.executor.Done(s, a.Target) {
			d.engage(a, creep)
			return events
		}
		err := d.executor.Act(s, a.Target)
		switch {
		case err == nil, errors.Is(err, world.ErrBusy):
		case errors.Is(err, world.ErrNotInRange), errors.Is(err, world.ErrNoPath):
			d.approach(a, s)
			a.State = StateOnWay
		default:
			slog.Debug("work stalled", "agent", a.Name, "target", target.Describe(a.Target), "error", err)
		}
	}
	return events
}

func (d *Driver) subject(a *Agent, creep world.Creep) work.Subject {
	return work.Subject{Name: a.Name, Role: a.Role, Creep: creep}
}

// engage resolves a fresh target and tries it at once. Without a target
// the agent goes Idle.
func (d *Driver) engage(a *Agent, creep world.Creep) {
	t, ok := d.resolver.Resolve(resolver.Request{
		Name:    a.Name,
		Role:    a.Role,
		Ordinal: a.Ordinal,
		Creep:   creep,
	})
	if !ok {
		a.Target = nil
		a.State = StateIdle
		return
	}
	a.Target = t
	d.attempt(a, d.subject(a, creep))
}

// attempt acts on the current target. Success means Working; a busy
// executor keeps the target without moving; anything else moves closer.
func (d *Driver) attempt(a *Agent, s work.Subject) {
	err := d.executor.Act(s, a.Target)
	switch {
	case err == nil:
		a.State = StateWorking
	case errors.Is(err, world.ErrBusy):
		a.State = StateOnWay
	default:
		d.approach(a, s)
		a.State = StateOnWay
	}
}

func (d *Driver) approach(a *Agent, s work.Subject) {
	if err := d.executor.Approach(s, a.Target); err != nil {
		slog.Debug("approach failed", "agent", a.Name, "target", target.Describe(a.Target), "error", err)
	}
}
