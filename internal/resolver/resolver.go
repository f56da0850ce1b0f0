// Package resolver picks the single best target for an agent. Every role is
// a strategy table of ordered steps; within a step the nearest eligible
// candidate wins.
package resolver

import (
	"log/slog"
	"sort"

	"github.com/talgya/colony/internal/memory"
	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/world"
)

// Config tunes thresholds and the fallback behavior.
type Config struct {
	UnitCapacity  int                    // Energy per carry part used by carry-load thresholds
	ParkAtStorage bool                   // Return a Park target when nothing else matches
	MinerOffsets  map[int]world.HexCoord // Miner post offset from its source, by ordinal
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		UnitCapacity:  world.CarryPerPart,
		ParkAtStorage: true,
		MinerOffsets: map[int]world.HexCoord{
			0: {Q: 0, R: -1},
			1: {Q: 0, R: 1},
		},
	}
}

// MinerOffset returns the post offset for a miner ordinal. Ordinals without
// a configured offset use the hex direction ordinal mod 6.
func (c Config) MinerOffset(ordinal int) world.HexCoord {
	if off, ok := c.MinerOffsets[ordinal]; ok {
		return off
	}
	return world.HexNeighborDirections[ordinal%len(world.HexNeighborDirections)]
}

// Request describes the agent asking for a target.
type Request struct {
	Name    string
	Role    roles.Role
	Ordinal int
	Creep   world.Creep
}

// Resolver resolves targets against a world snapshot.
type Resolver struct {
	world  world.Query
	memory memory.Store
	cfg    Config
	chains map[roles.Role]Chain
}

// New creates a resolver with the default strategy table.
func New(q world.Query, mem memory.Store, cfg Config) *Resolver {
	if cfg.UnitCapacity <= 0 {
		cfg.UnitCapacity = world.CarryPerPart
	}
	return &Resolver{
		world:  q,
		memory: mem,
		cfg:    cfg,
		chains: DefaultChains(),
	}
}

// Config returns the active configuration.
func (r *Resolver) Config() Config { return r.cfg }

// Chain returns the strategy of a role.
func (r *Resolver) Chain(role roles.Role) (Chain, bool) {
	c, ok := r.chains[role]
	return c, ok
}

// Amount converts a step threshold into an energy amount for role.
func (r *Resolver) Amount(step Step, role roles.Role) int {
	switch step.Threshold {
	case ThresholdCarryLoad:
		if n := roles.CarryUnits(role) * r.cfg.UnitCapacity; n > 0 {
			return n
		}
		return 1
	case ThresholdFixed:
		return step.Amount
	default:
		return 1
	}
}

// Resolve returns the target for this tick, or false when nothing is viable.
func (r *Resolver) Resolve(req Request) (target.Target, bool) {
	scan := NewScan(r.world, req.Creep.Region, req.Creep.Pos)

	var (
		t  target.Target
		ok bool
	)
	if req.Role == roles.RoleMiner {
		t, ok = r.resolveMiner(req)
	} else {
		t, ok = r.resolveChain(req, scan)
	}

	if !ok && r.cfg.ParkAtStorage {
		if st, found := scan.storage(); found {
			if park, err := target.ParkAt(st); err == nil {
				slog.Debug("no target, parking", "agent", req.Name, "storage", st.ID)
				return park, true
			}
		}
	}
	if ok {
		slog.Debug("target resolved", "agent", req.Name, "target", target.Describe(t))
	}
	return t, ok
}

func (r *Resolver) resolveChain(req Request, scan *Scan) (target.Target, bool) {
	chain, ok := r.chains[req.Role]
	if !ok {
		return nil, false
	}

	working, set := r.memory.Working(req.Name)
	if !set {
		working = true
	}

	steps := chain.Collect
	if req.Creep.Store.Used > 0 && working {
		steps = chain.Deliver
	} else {
		r.memory.SetWorking(req.Name, false)
	}

	for _, step := range steps {
		if t, found := scan.Find(step, r.Amount(step, req.Role)); found {
			return t, true
		}
	}
	return nil, false
}

// resolveMiner binds a miner to the source picked by its ordinal. A loaded
// miner whose container is full unloads into an adjacent link instead.
func (r *Resolver) resolveMiner(req Request) (target.Target, bool) {
	region := req.Creep.Region
	sources := r.world.Sources(region)
	if len(sources) == 0 {
		return nil, false
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })

	src := sources[req.Ordinal%len(sources)]
	post := src.Pos.Add(r.cfg.MinerOffset(req.Ordinal))

	if req.Creep.Store.Used > 0 {
		if link, ok := PostLink(r.world, region, post); ok {
			return target.TransferToLink{Ref: target.Ref{ID: link.ID, Pos: link.Pos}}, true
		}
	}
	return target.ForSource(src, &post), true
}

// PostLink finds a link with room next to a post whose container is full.
// This is the condition under which a loaded miner unloads into the link.
func PostLink(q world.Query, region string, post world.HexCoord) (world.Structure, bool) {
	if !ContainerFullAt(q, region, post) {
		return world.Structure{}, false
	}
	var links []world.Structure
	for _, st := range q.Structures(region) {
		if st.Kind == world.KindLink && world.InRange(post, st.Pos, world.RangeAdjacent) && st.Store.Free() > 0 {
			links = append(links, st)
		}
	}
	return nearest(post, links, structurePos)
}

// ContainerFullAt reports whether a full container stands on pos.
func ContainerFullAt(q world.Query, region string, pos world.HexCoord) bool {
	for _, st := range q.StructuresAt(region, pos) {
		if st.Kind == world.KindContainer {
			return st.Store.Full()
		}
	}
	return false
}
