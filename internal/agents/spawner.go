// Agent creation from the bootstrap list, and spawn requests.
package agents

import (
	"fmt"
	"log/slog"

	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/world"
)

// Bootstrap creates one agent per name, in order. An agent whose creep
// already exists adopts it and starts Idle, or Spawning if the body is not
// finished.
func Bootstrap(names []string, region string, q world.Query) []*Agent {
	agents := make([]*Agent, 0, len(names))
	for _, name := range names {
		a := NewAgent(name, region)
		if c, ok := q.Creep(name); ok {
			if c.Spawning {
				a.State = StateSpawning
			} else {
				a.EntityID = c.ID
				a.State = StateIdle
			}
			slog.Info("agent adopted creep", "agent", name, "creep", c.ID, "state", a.State)
		}
		agents = append(agents, a)
	}
	return agents
}

// requestSpawn asks the configured spawn to build the agent's body.
func (d *Driver) requestSpawn(a *Agent) error {
	sp, ok := d.world.Spawn(d.spawn)
	if !ok {
		return fmt.Errorf("spawn %s: %w", d.spawn, world.ErrNotFound)
	}
	if sp.Spawning != "" && sp.Spawning != a.Name {
		return fmt.Errorf("spawn %s is making %s: %w", d.spawn, sp.Spawning, world.ErrBusy)
	}
	cost := roles.Cost(a.Role)
	if have := d.world.EnergyAvailable(sp.Region); have < cost {
		return fmt.Errorf("%s costs %d, %d available: %w", a.Role, cost, have, world.ErrNotEnough)
	}
	return d.world.SpawnCreep(sp.ID, roles.Body(a.Role), a.Name)
}
