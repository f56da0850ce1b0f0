package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/memory"
	"github.com/talgya/colony/internal/resolver"
	"github.com/talgya/colony/internal/sandbox"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

func newColony(t *testing.T, names ...string) (*Colony, *sandbox.World, sandbox.Placed) {
	t.Helper()
	opts := sandbox.DefaultOptions()
	w := sandbox.New(opts)
	placed := w.Populate(sandbox.DefaultLayout())

	mem := memory.NewMap()
	driver := agents.NewDriver(w,
		resolver.New(w, mem, resolver.DefaultConfig()),
		work.New(w, mem, work.DefaultConfig()),
		"Spawn1")
	ag := agents.Bootstrap(names, w.Region(), w)
	var pairs []LinkPair
	for _, p := range placed.Links {
		pairs = append(pairs, LinkPair{From: p[0], To: p[1]})
	}
	return NewColony(w, w.Region(), ag, driver, mem, pairs), w, placed
}

func TestEngineStepCallbacks(t *testing.T) {
	e := NewEngine(10)
	e.ReportEvery = 5
	e.SaveEvery = 4

	var ticks, reports, saves []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnReport = func(tick uint64) { reports = append(reports, tick) }
	e.OnSave = func(tick uint64) { saves = append(saves, tick) }

	for i := 0; i < 10; i++ {
		e.Step()
	}
	assert.Equal(t, uint64(20), e.Tick())
	assert.Len(t, ticks, 10)
	assert.Equal(t, uint64(11), ticks[0])
	assert.Equal(t, []uint64{15, 20}, reports)
	assert.Equal(t, []uint64{12, 16, 20}, saves)
}

func TestEngineRunStopsAtMaxTicks(t *testing.T) {
	e := NewEngine(0)
	e.Interval = time.Millisecond
	e.MaxTicks = 5
	e.SetSpeed(10)

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, uint64(5), e.Tick())
	assert.False(t, e.Running())
}

func TestEngineSpeedNeverNegative(t *testing.T) {
	e := NewEngine(0)
	e.SetSpeed(-3)
	assert.Zero(t, e.Speed())
}

func TestColonyRunsAgentsInOrder(t *testing.T) {
	c, _, _ := newColony(t, "transfer-0", "carrier-0", "miner-1")
	c.Tick(1)

	snap := c.Snapshot()
	require.Len(t, snap.Agents, 3)
	assert.Equal(t, "transfer-0", snap.Agents[0].Name)
	assert.Equal(t, "generic", snap.Agents[0].Role)
	assert.Equal(t, "hauler", snap.Agents[1].Role)
	assert.Equal(t, uint64(1), snap.Tick)

	// Only the first agent gets the spawn this tick.
	assert.Equal(t, "spawning", snap.Agents[0].State)
	assert.Equal(t, "not_exist", snap.Agents[1].State)
	assert.Equal(t, 1, snap.Stats.States["spawning"])

	events := c.RecentEvents(10)
	require.NotEmpty(t, events)
	assert.Equal(t, "transfer-0", events[0].Agent)
}

func TestColonyEventsAndSubscribers(t *testing.T) {
	c, _, _ := newColony(t, "transfer-0")
	ch := c.Subscribe(4)

	c.Tick(1)
	select {
	case ev := <-ch:
		assert.Equal(t, "agent", ev.Category)
		assert.Equal(t, uint64(1), ev.Tick)
	default:
		t.Fatal("no event delivered")
	}

	unsaved := c.TakeUnsaved()
	assert.NotEmpty(t, unsaved)
	assert.Empty(t, c.TakeUnsaved())

	c.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)

	for i := 0; i < MaxEvents+10; i++ {
		c.Record(2, "colony", "noise")
	}
	assert.Len(t, c.RecentEvents(0), MaxEvents)
	assert.Len(t, c.RecentEvents(3), 3)
}

func TestLinkBalancerMovesFullToEmpty(t *testing.T) {
	c, w, placed := newColony(t)
	require.Len(t, placed.Links, 1)
	from, to := placed.Links[0][0], placed.Links[0][1]

	w.SetStore(from, 400)
	assert.Empty(t, c.links.Run(), "sender not full")

	w.SetStore(from, 800)
	events := c.links.Run()
	require.Len(t, events, 1)
	dst, _ := w.Structure(to)
	assert.Equal(t, 800-800*sandbox.LinkLossPercent/100, dst.Store.Used)

	w.SetStore(from, 800)
	assert.Empty(t, c.links.Run(), "receiver not empty")
}

func TestColonyLongRun(t *testing.T) {
	names := []string{"transfer-0", "carrier-0", "miner-1", "miner-0", "builder-1", "builder-0", "upgrader-0"}
	c, w, _ := newColony(t, names...)

	for tick := uint64(1); tick <= 600; tick++ {
		c.Tick(tick)
		for _, a := range c.Agents {
			if a.State == agents.StateWorking {
				require.NotNil(t, a.Target, "tick %d: %s", tick, a.Name)
			}
		}
	}

	snap := c.Snapshot()
	assert.Positive(t, snap.Stats.Alive)
	assert.Positive(t, w.Stats().Harvested)
	assert.Positive(t, w.Stats().Spawned)

	for _, a := range c.Agents {
		if a.Role.String() != "miner" || !a.Bound() {
			continue
		}
		cr, ok := w.Creep(a.Name)
		require.True(t, ok)
		if a.State == agents.StateWorking {
			// Working miners stand on their post, which holds a container.
			kinds := w.StructuresAt(w.Region(), cr.Pos)
			require.NotEmpty(t, kinds)
			assert.Equal(t, world.KindContainer, kinds[0].Kind)
		}
	}
}

func TestColonyDropsFlagsOfRetiredAgents(t *testing.T) {
	w := sandbox.New(sandbox.DefaultOptions())
	w.Populate(sandbox.DefaultLayout())
	mem := memory.NewMap()
	mem.Restore(map[string]bool{"builder-0": true, "builder-7": false})
	driver := agents.NewDriver(w,
		resolver.New(w, mem, resolver.DefaultConfig()),
		work.New(w, mem, work.DefaultConfig()),
		"Spawn1")

	NewColony(w, w.Region(), agents.Bootstrap([]string{"builder-0"}, w.Region(), w), driver, mem, nil)

	assert.Equal(t, []string{"builder-0"}, mem.Names())
	working, ok := mem.Working("builder-0")
	assert.True(t, ok)
	assert.True(t, working)
}

func TestColonyRequeueKeepsOrder(t *testing.T) {
	c, _, _ := newColony(t)
	c.Record(1, "colony", "first")
	c.Record(2, "colony", "second")
	taken := c.TakeUnsaved()
	require.Len(t, taken, 2)

	c.Record(3, "colony", "third")
	c.Requeue(taken)

	var got []string
	for _, e := range c.TakeUnsaved() {
		got = append(got, e.Description)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
}
