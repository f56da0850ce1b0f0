// Colony ties the agents, the link balancer and the world together and runs
// them each tick.
package engine

import (
	"log/slog"
	"sync"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/memory"
	"github.com/talgya/colony/internal/world"
)

// MaxEvents is how many recent events the colony keeps in memory.
const MaxEvents = 500

// Backend is a world that also runs its own clocks once per tick.
type Backend interface {
	world.World
	Advance(tick uint64)
}

// Event is a notable occurrence in the colony.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Agent       string `json:"agent,omitempty" db:"agent"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "agent", "link", "colony"
}

// ColonyStats tracks aggregate colony statistics.
type ColonyStats struct {
	Agents          int            `json:"agents"`
	Alive           int            `json:"alive"` // Agents bound to a creep
	States          map[string]int `json:"states"`
	EnergyAvailable int            `json:"energy_available"`
	StoredEnergy    int            `json:"stored_energy"`
	Sites           int            `json:"construction_sites"`
	Hostiles        bool           `json:"hostiles"`
}

// Snapshot is an immutable view of the colony published after each tick.
type Snapshot struct {
	Tick   uint64           `json:"tick"`
	Stats  ColonyStats      `json:"stats"`
	Agents []agents.Summary `json:"agents"`
}

// Colony holds the agents of one region and runs them in registration order.
type Colony struct {
	World    Backend
	Region   string
	Agents   []*agents.Agent
	Memory   *memory.Map
	Events   []Event // Most recent MaxEvents events
	LastTick uint64

	driver  *agents.Driver
	links   *LinkBalancer
	unsaved []Event

	mu       sync.RWMutex
	snapshot Snapshot

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

// NewColony creates a colony. The agent slice order is the run order.
// Working flags of agents no longer in the roster are dropped.
func NewColony(w Backend, region string, ag []*agents.Agent, driver *agents.Driver, mem *memory.Map, links []LinkPair) *Colony {
	roster := make(map[string]bool, len(ag))
	for _, a := range ag {
		roster[a.Name] = true
	}
	for _, name := range mem.Names() {
		if !roster[name] {
			slog.Info("dropping working flag of retired agent", "agent", name)
			mem.Forget(name)
		}
	}

	c := &Colony{
		World:  w,
		Region: region,
		Agents: ag,
		Memory: mem,
		driver: driver,
		links:  NewLinkBalancer(w, links),
		subs:   make(map[chan Event]struct{}),
	}
	c.publish()
	return c
}

// CurrentTick returns the most recently processed tick number.
func (c *Colony) CurrentTick() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Tick
}

// Tick runs every agent once, then the link balancer, then the world's own
// clocks, and publishes a new snapshot.
func (c *Colony) Tick(tick uint64) {
	c.LastTick = tick
	for _, a := range c.Agents {
		for _, desc := range c.driver.Run(a) {
			c.record(Event{Tick: tick, Agent: a.Name, Description: desc, Category: "agent"})
		}
	}
	for _, desc := range c.links.Run() {
		c.record(Event{Tick: tick, Description: desc, Category: "link"})
	}
	c.World.Advance(tick)
	c.publish()
}

// Record adds an event that did not come from an agent.
func (c *Colony) Record(tick uint64, category, desc string) {
	c.record(Event{Tick: tick, Description: desc, Category: category})
}

func (c *Colony) record(ev Event) {
	c.mu.Lock()
	c.Events = append(c.Events, ev)
	if over := len(c.Events) - MaxEvents; over > 0 {
		c.Events = append(c.Events[:0:0], c.Events[over:]...)
	}
	c.unsaved = append(c.unsaved, ev)
	c.mu.Unlock()
	c.broadcast(ev)
}

// TakeUnsaved returns the events recorded since the last call.
func (c *Colony) TakeUnsaved() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.unsaved
	c.unsaved = nil
	return out
}

// Requeue puts events back in front of the unsaved buffer after a failed
// save, so the next TakeUnsaved returns them again in order.
func (c *Colony) Requeue(events []Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsaved = append(append([]Event(nil), events...), c.unsaved...)
}

// RecentEvents returns up to limit of the latest events, oldest first.
func (c *Colony) RecentEvents(limit int) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start := 0
	if limit > 0 && len(c.Events) > limit {
		start = len(c.Events) - limit
	}
	out := make([]Event, len(c.Events)-start)
	copy(out, c.Events[start:])
	return out
}

// Snapshot returns the latest published view. Safe from any goroutine.
func (c *Colony) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Agent returns the published summary of one agent.
func (c *Colony) Agent(name string) (agents.Summary, bool) {
	snap := c.Snapshot()
	for _, s := range snap.Agents {
		if s.Name == name {
			return s, true
		}
	}
	return agents.Summary{}, false
}

// publish rebuilds the snapshot. Only the tick goroutine calls it.
func (c *Colony) publish() {
	snap := Snapshot{
		Tick:   c.LastTick,
		Agents: make([]agents.Summary, 0, len(c.Agents)),
	}
	snap.Stats = c.stats()
	for _, a := range c.Agents {
		working, set := c.Memory.Working(a.Name)
		if !set {
			working = true
		}
		var creep *world.Creep
		if cr, ok := c.World.Creep(a.Name); ok {
			creep = &cr
		}
		snap.Agents = append(snap.Agents, a.Summarize(creep, working))
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
}

func (c *Colony) stats() ColonyStats {
	s := ColonyStats{
		Agents:          len(c.Agents),
		States:          make(map[string]int),
		EnergyAvailable: c.World.EnergyAvailable(c.Region),
		Sites:           len(c.World.ConstructionSites(c.Region)),
		Hostiles:        c.World.HostilesPresent(c.Region),
	}
	for _, a := range c.Agents {
		s.States[a.State.String()]++
		if a.Bound() {
			s.Alive++
		}
	}
	for _, st := range c.World.Structures(c.Region) {
		if st.Kind == world.KindStorage || st.Kind == world.KindContainer {
			s.StoredEnergy += st.Store.Used
		}
	}
	return s
}

// Subscribe returns a channel that receives every new event. Slow
// subscribers miss events rather than block the tick.
func (c *Colony) Subscribe(buffer int) chan Event {
	ch := make(chan Event, buffer)
	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (c *Colony) Unsubscribe(ch chan Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if _, ok := c.subs[ch]; ok {
		delete(c.subs, ch)
		close(ch)
	}
}

func (c *Colony) broadcast(ev Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
			slog.Debug("subscriber lagging, event dropped", "tick", ev.Tick)
		}
	}
}
