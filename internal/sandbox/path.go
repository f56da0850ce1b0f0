package sandbox

import (
	"slices"

	"github.com/talgya/colony/internal/world"
)

// blocked returns the hexes a creep cannot enter: solid structures,
// sources and other creeps.
func (w *World) blocked(region, self string) map[world.HexCoord]bool {
	out := make(map[world.HexCoord]bool)
	for _, st := range w.structures {
		if st.Region == region && !st.Kind.Walkable() {
			out[st.Pos] = true
		}
	}
	for _, src := range w.sources {
		if src.Region == region {
			out[src.Pos] = true
		}
	}
	for name, c := range w.creeps {
		if name != self && c.Region == region && !c.Spawning {
			out[c.Pos] = true
		}
	}
	return out
}

// route is a path kept for reuse between MoveToward calls.
type route struct {
	goal  world.HexCoord
	rng   int
	steps []world.HexCoord
	until uint64 // Last world tick the route may be followed
}

// step returns the next hex toward goal. A cached route is followed while
// it is fresh, still targets the same goal and its next hex is enterable;
// otherwise the path is searched again and cached for reuse ticks.
func (w *World) step(c *world.Creep, goal world.HexCoord, rng, reuse int) (world.HexCoord, bool) {
	if r := w.routes[c.Name]; r != nil && r.goal == goal && r.rng == rng && w.tick <= r.until && len(r.steps) > 0 {
		next := r.steps[0]
		if world.Distance(c.Pos, next) == 1 && w.enterable(c.Region, c.Name, next) {
			r.steps = r.steps[1:]
			return next, true
		}
	}
	delete(w.routes, c.Name)

	path, ok := w.findPath(c.Region, c.Name, c.Pos, goal, rng)
	if !ok {
		return c.Pos, false
	}
	if reuse > 0 && len(path) > 1 {
		w.routes[c.Name] = &route{goal: goal, rng: rng, steps: path[1:], until: w.tick + uint64(reuse)}
	}
	return path[0], true
}

// enterable reports whether self could step onto pos now.
func (w *World) enterable(region, self string, pos world.HexCoord) bool {
	m := w.maps[region]
	if m == nil || !m.Walkable(pos) {
		return false
	}
	return !w.blocked(region, self)[pos]
}

// findPath runs a breadth-first search from `from` to the closest hex
// within rng of goal and returns the path, `from` excluded.
func (w *World) findPath(region, self string, from, goal world.HexCoord, rng int) ([]world.HexCoord, bool) {
	m := w.maps[region]
	if m == nil {
		return nil, false
	}
	blocked := w.blocked(region, self)

	prev := map[world.HexCoord]world.HexCoord{from: from}
	queue := []world.HexCoord{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur != from && world.Distance(cur, goal) <= rng {
			var path []world.HexCoord
			for ; cur != from; cur = prev[cur] {
				path = append(path, cur)
			}
			slices.Reverse(path)
			return path, true
		}
		for _, n := range cur.Neighbors() {
			if _, seen := prev[n]; seen {
				continue
			}
			if !m.Walkable(n) || blocked[n] {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return nil, false
}

// freeHexNear finds the closest enterable hex around pos, pos excluded.
func (w *World) freeHexNear(region string, pos world.HexCoord) (world.HexCoord, bool) {
	m := w.maps[region]
	if m == nil {
		return pos, false
	}
	blocked := w.blocked(region, "")
	seen := map[world.HexCoord]bool{pos: true}
	queue := []world.HexCoord{pos}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if seen[n] || !m.Walkable(n) {
				continue
			}
			seen[n] = true
			if !blocked[n] {
				return n, true
			}
			queue = append(queue, n)
		}
	}
	return pos, false
}
