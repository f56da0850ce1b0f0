package sandbox

import (
	"log/slog"
	"slices"

	"github.com/talgya/colony/internal/world"
)

// Advance runs the world's own clocks for one tick. It is called after all
// agents have acted.
func (w *World) Advance(tick uint64) {
	w.tick = tick

	w.finishSpawns()
	w.ageCreeps()
	w.regenerate(tick)
	w.decay(tick)
	w.raid(tick)

	for name, f := range w.fatigue {
		if f <= 1 {
			delete(w.fatigue, name)
		} else {
			w.fatigue[name] = f - 1
		}
	}
	for id, cd := range w.cooldowns {
		if cd <= 1 {
			delete(w.cooldowns, id)
		} else {
			w.cooldowns[id] = cd - 1
		}
	}
}

// finishSpawns counts spawn timers down and steps finished creeps out next
// to their spawn.
func (w *World) finishSpawns() {
	names := make([]string, 0, len(w.spawnTimers))
	for name := range w.spawnTimers {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		w.spawnTimers[name]--
		if w.spawnTimers[name] > 0 {
			continue
		}
		delete(w.spawnTimers, name)
		c, ok := w.creeps[name]
		if !ok {
			continue
		}
		c.Spawning = false
		for _, st := range w.structures {
			if st.Kind == world.KindSpawn && st.Spawning == name {
				st.Spawning = ""
				if pos, ok := w.freeHexNear(st.Region, st.Pos); ok {
					c.Pos = pos
				}
			}
		}
		w.stats.Spawned++
		slog.Debug("creep spawned", "creep", name, "pos", c.Pos)
	}
}

func (w *World) ageCreeps() {
	for name, c := range w.creeps {
		if c.Spawning {
			continue
		}
		c.TicksToLive--
		if c.TicksToLive <= 0 {
			slog.Debug("creep expired", "creep", name)
			w.Kill(name)
		}
	}
}

func (w *World) regenerate(tick uint64) {
	if tick > 0 && tick%uint64(w.opts.SourceRegenTicks) == 0 {
		for _, src := range w.sources {
			src.Energy = src.EnergyCapacity
		}
	}
	if w.opts.SpawnRegen <= 0 {
		return
	}
	for region := range w.maps {
		if w.EnergyAvailable(region) >= w.opts.SpawnRegenCap {
			continue
		}
		for _, id := range w.structureOrder {
			st := w.structures[id]
			if st != nil && st.Region == region && st.Kind == world.KindSpawn {
				st.Store.Used = min(st.Store.Used+w.opts.SpawnRegen, st.Store.Capacity)
			}
		}
	}
}

func (w *World) decay(tick uint64) {
	if w.opts.DecayTicks <= 0 || tick == 0 || tick%uint64(w.opts.DecayTicks) != 0 {
		return
	}
	for _, st := range w.structures {
		switch st.Kind {
		case world.KindRoad:
			st.Hits = max(st.Hits-roadDecay, 1)
		case world.KindContainer:
			st.Hits = max(st.Hits-containerDecay, 1)
		}
	}
}

// raid starts scheduled raids and counts running ones down. Every tower
// with energy shortens a raid by one extra tick and pays TowerShotCost.
func (w *World) raid(tick uint64) {
	if w.opts.RaidEvery > 0 && tick > 0 && tick%uint64(w.opts.RaidEvery) == 0 {
		w.hostiles[w.opts.Region] = w.opts.RaidLength
		w.stats.Raids++
		slog.Info("hostiles entered region", "region", w.opts.Region, "tick", tick)
	}
	for region, left := range w.hostiles {
		left--
		for _, st := range w.structures {
			if st.Region == region && st.Kind == world.KindTower && st.Store.Used >= TowerShotCost {
				st.Store.Used -= TowerShotCost
				left--
			}
		}
		if left <= 0 {
			delete(w.hostiles, region)
			slog.Info("hostiles left region", "region", region, "tick", tick)
			continue
		}
		w.hostiles[region] = left
	}
}
