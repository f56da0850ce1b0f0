package sandbox

import (
	"fmt"

	"github.com/talgya/colony/internal/world"
)

// actor returns a creep that is able to act this tick.
func (w *World) actor(name string) (*world.Creep, error) {
	c, ok := w.creeps[name]
	if !ok {
		return nil, fmt.Errorf("creep %s: %w", name, world.ErrNotFound)
	}
	if c.Spawning {
		return nil, fmt.Errorf("creep %s is spawning: %w", name, world.ErrBusy)
	}
	return c, nil
}

// worker is an actor with at least one work part.
func (w *World) worker(name string) (*world.Creep, int, error) {
	c, err := w.actor(name)
	if err != nil {
		return nil, 0, err
	}
	work := c.Count(world.PartWork)
	if work == 0 {
		return nil, 0, fmt.Errorf("creep %s: %w", name, world.ErrNoBodyPart)
	}
	return c, work, nil
}

func inRange(c *world.Creep, pos world.HexCoord, rng int) error {
	if !world.InRange(c.Pos, pos, rng) {
		return fmt.Errorf("%s at %s is %d from %s: %w", c.Name, c.Pos, world.Distance(c.Pos, pos), pos, world.ErrNotInRange)
	}
	return nil
}

func (w *World) SpawnCreep(spawn world.ObjectID, body []world.Part, name string) error {
	sp, ok := w.structures[spawn]
	if !ok {
		return fmt.Errorf("spawn %s: %w", spawn, world.ErrNotFound)
	}
	if sp.Kind != world.KindSpawn {
		return fmt.Errorf("spawn %s is a %s: %w", spawn, sp.Kind, world.ErrInvalidTarget)
	}
	if len(body) == 0 || name == "" {
		return fmt.Errorf("spawn %q: %w", name, world.ErrInvalidArgs)
	}
	if _, exists := w.creeps[name]; exists {
		return fmt.Errorf("creep %s exists: %w", name, world.ErrInvalidArgs)
	}
	if sp.Spawning != "" {
		return fmt.Errorf("spawn %s is making %s: %w", sp.Name, sp.Spawning, world.ErrBusy)
	}
	cost := 0
	for _, p := range body {
		cost += p.Cost()
	}
	if have := w.EnergyAvailable(sp.Region); have < cost {
		return fmt.Errorf("spawn %s needs %d, has %d: %w", name, cost, have, world.ErrNotEnough)
	}
	w.drainSpawnEnergy(sp.Region, cost)

	carry := 0
	for _, p := range body {
		if p == world.PartCarry {
			carry++
		}
	}
	w.AddCreep(world.Creep{
		Name:        name,
		Region:      sp.Region,
		Pos:         sp.Pos,
		Store:       world.Store{Capacity: carry * world.CarryPerPart},
		Body:        body,
		Spawning:    true,
		TicksToLive: w.opts.CreepLifetime,
	})
	sp.Spawning = name
	w.spawnTimers[name] = w.opts.SpawnTicksPerPart * len(body)
	return nil
}

// drainSpawnEnergy pays a spawn cost from spawns first, then extensions.
func (w *World) drainSpawnEnergy(region string, cost int) {
	for _, kind := range []world.StructureKind{world.KindSpawn, world.KindExtension} {
		for _, id := range w.structureOrder {
			st := w.structures[id]
			if st == nil || st.Region != region || st.Kind != kind {
				continue
			}
			take := min(cost, st.Store.Used)
			st.Store.Used -= take
			cost -= take
			if cost == 0 {
				return
			}
		}
	}
}

func (w *World) MoveToward(name string, pos world.HexCoord, opts world.MoveOptions) error {
	c, err := w.actor(name)
	if err != nil {
		return err
	}
	if world.InRange(c.Pos, pos, opts.Range) {
		return nil
	}
	if w.fatigue[name] > 0 {
		return fmt.Errorf("creep %s is tired: %w", name, world.ErrBusy)
	}
	next, ok := w.step(c, pos, opts.Range, opts.ReusePath)
	if !ok {
		return fmt.Errorf("creep %s to %s: %w", name, pos, world.ErrNoPath)
	}
	c.Pos = next
	if hex := w.maps[c.Region].Get(next); hex != nil && hex.Terrain == world.TerrainSwamp && !w.roadAt(c.Region, next) {
		w.fatigue[name] = 1
	}
	return nil
}

func (w *World) roadAt(region string, pos world.HexCoord) bool {
	for _, st := range w.StructuresAt(region, pos) {
		if st.Kind == world.KindRoad {
			return true
		}
	}
	return false
}

// Harvest moves energy from a source into the creep. What the creep cannot
// hold drops into a container underfoot, if there is one.
func (w *World) Harvest(name string, source world.ObjectID) error {
	src, ok := w.sources[source]
	if !ok {
		return fmt.Errorf("source %s: %w", source, world.ErrNotFound)
	}
	c, work, err := w.worker(name)
	if err != nil {
		return err
	}
	if err := inRange(c, src.Pos, world.RangeAdjacent); err != nil {
		return err
	}
	if src.Energy == 0 {
		return fmt.Errorf("source %s is empty: %w", source, world.ErrNotEnough)
	}

	amount := min(work*HarvestPerWork, src.Energy)
	src.Energy -= amount
	w.stats.Harvested += amount

	kept := min(amount, c.Store.Free())
	c.Store.Used += kept
	if overflow := amount - kept; overflow > 0 {
		for _, id := range w.structureOrder {
			st := w.structures[id]
			if st != nil && st.Kind == world.KindContainer && st.Region == c.Region && st.Pos == c.Pos {
				st.Store.Used += min(overflow, st.Store.Free())
				break
			}
		}
	}
	return nil
}

// Build spends carried energy on a construction site. A finished site turns
// into its structure.
func (w *World) Build(name string, site world.ObjectID) error {
	cs, ok := w.sites[site]
	if !ok {
		return fmt.Errorf("site %s: %w", site, world.ErrNotFound)
	}
	c, work, err := w.worker(name)
	if err != nil {
		return err
	}
	if c.Store.Empty() {
		return fmt.Errorf("creep %s carries nothing: %w", name, world.ErrNotEnough)
	}
	if err := inRange(c, cs.Pos, world.RangeWork); err != nil {
		return err
	}

	amount := min(work*BuildPerWork, c.Store.Used, cs.ProgressTotal-cs.Progress)
	c.Store.Used -= amount
	cs.Progress += amount
	w.stats.Built += amount
	if cs.Progress >= cs.ProgressTotal {
		delete(w.sites, site)
		w.AddStructure(world.Structure{Kind: cs.Kind, Region: cs.Region, Pos: cs.Pos})
	}
	return nil
}

func (w *World) Upgrade(name string, controller world.ObjectID) error {
	ctl, ok := w.structures[controller]
	if !ok {
		return fmt.Errorf("controller %s: %w", controller, world.ErrNotFound)
	}
	if ctl.Kind != world.KindController {
		return fmt.Errorf("upgrade %s: %w", ctl.Kind, world.ErrInvalidTarget)
	}
	c, work, err := w.worker(name)
	if err != nil {
		return err
	}
	if c.Store.Empty() {
		return fmt.Errorf("creep %s carries nothing: %w", name, world.ErrNotEnough)
	}
	if err := inRange(c, ctl.Pos, world.RangeWork); err != nil {
		return err
	}
	amount := min(work*UpgradePerWork, c.Store.Used)
	c.Store.Used -= amount
	w.upgrades[controller] += amount
	w.stats.Upgraded += amount
	return nil
}

func (w *World) Transfer(name string, to world.ObjectID) error {
	st, ok := w.structures[to]
	if !ok {
		return fmt.Errorf("structure %s: %w", to, world.ErrNotFound)
	}
	if !st.Kind.HasStore() {
		return fmt.Errorf("transfer to %s: %w", st.Kind, world.ErrInvalidTarget)
	}
	c, err := w.actor(name)
	if err != nil {
		return err
	}
	if c.Store.Empty() {
		return fmt.Errorf("creep %s carries nothing: %w", name, world.ErrNotEnough)
	}
	if st.Store.Full() {
		return fmt.Errorf("%s %s is full: %w", st.Kind, to, world.ErrFull)
	}
	if err := inRange(c, st.Pos, world.RangeAdjacent); err != nil {
		return err
	}
	amount := min(c.Store.Used, st.Store.Free())
	c.Store.Used -= amount
	st.Store.Used += amount
	return nil
}

func (w *World) Withdraw(name string, from world.ObjectID) error {
	st, ok := w.structures[from]
	if !ok {
		return fmt.Errorf("structure %s: %w", from, world.ErrNotFound)
	}
	if !st.Kind.HasStore() {
		return fmt.Errorf("withdraw from %s: %w", st.Kind, world.ErrInvalidTarget)
	}
	c, err := w.actor(name)
	if err != nil {
		return err
	}
	if st.Store.Empty() {
		return fmt.Errorf("%s %s is empty: %w", st.Kind, from, world.ErrNotEnough)
	}
	if c.Store.Full() {
		return fmt.Errorf("creep %s is full: %w", name, world.ErrFull)
	}
	if err := inRange(c, st.Pos, world.RangeAdjacent); err != nil {
		return err
	}
	amount := min(st.Store.Used, c.Store.Free())
	st.Store.Used -= amount
	c.Store.Used += amount
	return nil
}

// Repair restores RepairPerWork hits per work part for one energy each.
func (w *World) Repair(name string, structure world.ObjectID) error {
	st, ok := w.structures[structure]
	if !ok {
		return fmt.Errorf("structure %s: %w", structure, world.ErrNotFound)
	}
	if st.Damage() == 0 {
		return fmt.Errorf("%s %s is intact: %w", st.Kind, structure, world.ErrInvalidTarget)
	}
	c, work, err := w.worker(name)
	if err != nil {
		return err
	}
	if c.Store.Empty() {
		return fmt.Errorf("creep %s carries nothing: %w", name, world.ErrNotEnough)
	}
	if err := inRange(c, st.Pos, world.RangeWork); err != nil {
		return err
	}
	energy := min(work, c.Store.Used)
	hits := min(energy*RepairPerWork, st.Damage())
	c.Store.Used -= energy
	st.Hits += hits
	w.stats.Repaired += hits
	return nil
}

// Suicide removes the creep at once, spawning or not.
func (w *World) Suicide(name string) error {
	if _, ok := w.creeps[name]; !ok {
		return fmt.Errorf("creep %s: %w", name, world.ErrNotFound)
	}
	w.removeCreep(name)
	return nil
}

// TransferEnergy sends as much as fits from one link to another, losing
// LinkLossPercent on the way. The sender cools down for the distance.
func (w *World) TransferEnergy(from, to world.ObjectID) error {
	src, ok := w.structures[from]
	if !ok {
		return fmt.Errorf("link %s: %w", from, world.ErrNotFound)
	}
	dst, ok := w.structures[to]
	if !ok {
		return fmt.Errorf("link %s: %w", to, world.ErrNotFound)
	}
	if src.Kind != world.KindLink || dst.Kind != world.KindLink || from == to {
		return fmt.Errorf("link transfer %s -> %s: %w", src.Kind, dst.Kind, world.ErrInvalidTarget)
	}
	if w.cooldowns[from] > 0 {
		return fmt.Errorf("link %s cooling down: %w", from, world.ErrBusy)
	}
	if src.Store.Empty() {
		return fmt.Errorf("link %s is empty: %w", from, world.ErrNotEnough)
	}
	if dst.Store.Full() {
		return fmt.Errorf("link %s is full: %w", to, world.ErrFull)
	}
	amount := min(src.Store.Used, dst.Store.Free())
	loss := amount * LinkLossPercent / 100
	src.Store.Used -= amount
	dst.Store.Used += amount - loss
	w.stats.LinkLoss += loss
	w.cooldowns[from] = world.Distance(src.Pos, dst.Pos)
	return nil
}
