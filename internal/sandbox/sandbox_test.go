package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colony/internal/world"
)

var body = []world.Part{world.PartWork, world.PartCarry, world.PartMove, world.PartMove}

func newSpawnWorld(energy int) (*World, world.ObjectID) {
	w := New(Options{Radius: 6})
	id := w.AddStructure(world.Structure{Kind: world.KindSpawn, Name: "Spawn1", Store: world.Store{Used: energy}})
	return w, id
}

func TestSpawnCreepLifecycle(t *testing.T) {
	w, spawn := newSpawnWorld(300)
	ext := w.AddStructure(world.Structure{Kind: world.KindExtension, Pos: world.HexCoord{Q: 2, R: 0}, Store: world.Store{Used: 50}})

	require.NoError(t, w.SpawnCreep(spawn, body, "generic-0"))
	assert.Equal(t, 100, w.EnergyAvailable(w.Region()), "spawn pays before extensions")
	sp, _ := w.Structure(spawn)
	assert.Equal(t, 50, sp.Store.Used)
	e, _ := w.Structure(ext)
	assert.Equal(t, 50, e.Store.Used)

	c, ok := w.Creep("generic-0")
	require.True(t, ok)
	assert.True(t, c.Spawning)
	assert.Equal(t, 50, c.Store.Capacity)

	err := w.SpawnCreep(spawn, body, "generic-1")
	assert.ErrorIs(t, err, world.ErrBusy)
	assert.ErrorIs(t, w.MoveToward("generic-0", world.HexCoord{Q: 3, R: 0}, world.MoveOptions{}), world.ErrBusy)

	for tick := uint64(1); tick <= uint64(3*len(body)); tick++ {
		w.Advance(tick)
	}
	c, _ = w.Creep("generic-0")
	assert.False(t, c.Spawning)
	assert.Equal(t, 1, world.Distance(c.Pos, sp.Pos), "steps out next to the spawn")
	sp, _ = w.Structure(spawn)
	assert.Empty(t, sp.Spawning)
}

func TestSpawnCreepNotEnough(t *testing.T) {
	w, spawn := newSpawnWorld(200)
	err := w.SpawnCreep(spawn, append(body, world.PartCarry), "upgrader-0")
	assert.ErrorIs(t, err, world.ErrNotEnough)
	_, ok := w.Creep("upgrader-0")
	assert.False(t, ok)
	assert.Equal(t, 200, w.EnergyAvailable(w.Region()))
}

func TestSuicideWhileSpawningFreesSpawn(t *testing.T) {
	w, spawn := newSpawnWorld(300)
	require.NoError(t, w.SpawnCreep(spawn, body, "miner-0"))
	require.NoError(t, w.Suicide("miner-0"))

	sp, _ := w.Structure(spawn)
	assert.Empty(t, sp.Spawning)
	assert.ErrorIs(t, w.Suicide("miner-0"), world.ErrNotFound)
}

func TestMoveTowardRoutesAroundWalls(t *testing.T) {
	m := world.NewPlainMap(6)
	for r := -3; r <= 3; r++ {
		m.Get(world.HexCoord{Q: 1, R: r}).Terrain = world.TerrainWall
	}
	w := New(Options{Radius: 6, Terrain: m})
	w.AddCreep(world.Creep{Name: "hauler-0", Body: body})

	goal := world.HexCoord{Q: 3, R: 0}
	for i := 0; i < 20; i++ {
		require.NoError(t, w.MoveToward("hauler-0", goal, world.MoveOptions{}))
		c, _ := w.Creep("hauler-0")
		assert.NotEqual(t, world.TerrainWall, m.Get(c.Pos).Terrain)
	}
	c, _ := w.Creep("hauler-0")
	assert.Equal(t, goal, c.Pos)
}

func TestMoveTowardReusesPath(t *testing.T) {
	wall := func() *world.Map {
		m := world.NewPlainMap(6)
		for r := -3; r <= 3; r++ {
			m.Get(world.HexCoord{Q: 1, R: r}).Terrain = world.TerrainWall
		}
		return m
	}
	goal := world.HexCoord{Q: 3, R: 0}

	walk := func(reuse int) world.HexCoord {
		m := wall()
		w := New(Options{Radius: 6, Terrain: m})
		w.AddCreep(world.Creep{Name: "hauler-0", Body: body})
		require.NoError(t, w.MoveToward("hauler-0", goal, world.MoveOptions{ReusePath: reuse}))

		// The wall opens after the first step.
		for r := -3; r <= 3; r++ {
			m.Get(world.HexCoord{Q: 1, R: r}).Terrain = world.TerrainPlain
		}
		require.NoError(t, w.MoveToward("hauler-0", goal, world.MoveOptions{ReusePath: reuse}))
		c, _ := w.Creep("hauler-0")
		return c.Pos
	}

	fresh := walk(0)
	cached := walk(10)
	assert.Equal(t, 3, world.Distance(fresh, goal), "a fresh search takes the opened shortcut")
	assert.Equal(t, world.HexCoord{Q: 0, R: -2}, cached, "a reused path keeps the detour")
}

func TestMoveTowardDropsBlockedPath(t *testing.T) {
	w := New(Options{Radius: 6})
	w.AddCreep(world.Creep{Name: "hauler-0", Body: body})
	goal := world.HexCoord{Q: 4, R: 0}
	opts := world.MoveOptions{ReusePath: 10}

	require.NoError(t, w.MoveToward("hauler-0", goal, opts))
	require.Equal(t, world.HexCoord{Q: 1, R: 0}, mustCreep(t, w, "hauler-0").Pos)

	// Something now stands on the cached next hex.
	w.AddCreep(world.Creep{Name: "miner-0", Pos: world.HexCoord{Q: 2, R: 0}, Body: body})
	require.NoError(t, w.MoveToward("hauler-0", goal, opts))
	c := mustCreep(t, w, "hauler-0")
	assert.NotEqual(t, world.HexCoord{Q: 2, R: 0}, c.Pos)
	assert.Equal(t, 1, world.Distance(world.HexCoord{Q: 1, R: 0}, c.Pos))
}

func mustCreep(t *testing.T, w *World, name string) world.Creep {
	t.Helper()
	c, ok := w.Creep(name)
	require.True(t, ok)
	return c
}

func TestMoveTowardStopsInRange(t *testing.T) {
	w := New(Options{Radius: 6})
	w.AddCreep(world.Creep{Name: "builder-0", Body: body})

	goal := world.HexCoord{Q: 4, R: 0}
	require.NoError(t, w.MoveToward("builder-0", goal, world.MoveOptions{Range: 3}))
	require.NoError(t, w.MoveToward("builder-0", goal, world.MoveOptions{Range: 3}))
	c, _ := w.Creep("builder-0")
	assert.Equal(t, world.HexCoord{Q: 1, R: 0}, c.Pos)
}

func TestMoveTowardNoPath(t *testing.T) {
	m := world.NewPlainMap(4)
	for _, n := range (world.HexCoord{}).Neighbors() {
		m.Get(n).Terrain = world.TerrainWall
	}
	w := New(Options{Radius: 4, Terrain: m})
	w.AddCreep(world.Creep{Name: "miner-0", Body: body})

	err := w.MoveToward("miner-0", world.HexCoord{Q: 3, R: 0}, world.MoveOptions{})
	assert.ErrorIs(t, err, world.ErrNoPath)
}

func TestHarvestOverflowsIntoContainer(t *testing.T) {
	w := New(Options{Radius: 6})
	src := w.AddSource(world.Source{Pos: world.HexCoord{Q: 1, R: 0}})
	box := w.AddStructure(world.Structure{Kind: world.KindContainer})
	w.AddCreep(world.Creep{
		Name: "miner-0",
		Body: []world.Part{world.PartWork, world.PartWork, world.PartCarry, world.PartMove},
	})
	w.SetCreepEnergy("miner-0", 48)

	require.NoError(t, w.Harvest("miner-0", src))

	c, _ := w.Creep("miner-0")
	assert.Equal(t, 50, c.Store.Used)
	st, _ := w.Structure(box)
	assert.Equal(t, 2, st.Store.Used)
	s, _ := w.Source(src)
	assert.Equal(t, 2996, s.Energy)
}

func TestHarvestErrors(t *testing.T) {
	w := New(Options{Radius: 6})
	src := w.AddSource(world.Source{Pos: world.HexCoord{Q: 3, R: 0}})
	w.AddCreep(world.Creep{Name: "carrier-0", Body: []world.Part{world.PartCarry, world.PartMove}})
	w.AddCreep(world.Creep{Name: "miner-0", Body: body})

	assert.ErrorIs(t, w.Harvest("carrier-0", src), world.ErrNoBodyPart)
	assert.ErrorIs(t, w.Harvest("miner-0", src), world.ErrNotInRange)
	assert.ErrorIs(t, w.Harvest("miner-0", "nope"), world.ErrNotFound)
}

func TestBuildCompletesSite(t *testing.T) {
	w := New(Options{Radius: 6})
	site := w.AddSite(world.ConstructionSite{Kind: world.KindRoad, Pos: world.HexCoord{Q: 2, R: 0}, ProgressTotal: 8})
	w.AddCreep(world.Creep{Name: "builder-0", Body: body})
	w.SetCreepEnergy("builder-0", 50)

	require.NoError(t, w.Build("builder-0", site))
	cs, ok := w.ConstructionSite(site)
	require.True(t, ok)
	assert.Equal(t, 5, cs.Progress)

	require.NoError(t, w.Build("builder-0", site))
	_, ok = w.ConstructionSite(site)
	assert.False(t, ok)
	roads := w.StructuresAt(w.Region(), world.HexCoord{Q: 2, R: 0})
	require.Len(t, roads, 1)
	assert.Equal(t, world.KindRoad, roads[0].Kind)
	c, _ := w.Creep("builder-0")
	assert.Equal(t, 42, c.Store.Used)
}

func TestTransferAndWithdraw(t *testing.T) {
	w := New(Options{Radius: 6})
	ext := w.AddStructure(world.Structure{Kind: world.KindExtension, Pos: world.HexCoord{Q: 1, R: 0}, Store: world.Store{Used: 40}})
	box := w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: world.HexCoord{Q: 0, R: 1}, Store: world.Store{Used: 30}})
	ctl := w.AddStructure(world.Structure{Kind: world.KindController, Pos: world.HexCoord{Q: -1, R: 0}})
	w.AddCreep(world.Creep{Name: "hauler-0", Body: body})

	assert.ErrorIs(t, w.Transfer("hauler-0", ext), world.ErrNotEnough)
	require.NoError(t, w.Withdraw("hauler-0", box))
	require.NoError(t, w.Transfer("hauler-0", ext))

	c, _ := w.Creep("hauler-0")
	assert.Equal(t, 20, c.Store.Used)
	assert.ErrorIs(t, w.Transfer("hauler-0", ext), world.ErrFull)
	assert.ErrorIs(t, w.Transfer("hauler-0", ctl), world.ErrInvalidTarget)
	assert.ErrorIs(t, w.Withdraw("hauler-0", box), world.ErrNotEnough)
}

func TestRepairCostsOneEnergyPerWorkPart(t *testing.T) {
	w := New(Options{Radius: 6})
	road := w.AddStructure(world.Structure{Kind: world.KindRoad})
	w.SetHits(road, 4000)
	w.AddCreep(world.Creep{Name: "builder-0", Body: body})
	w.SetCreepEnergy("builder-0", 10)

	require.NoError(t, w.Repair("builder-0", road))
	st, _ := w.Structure(road)
	assert.Equal(t, 4100, st.Hits)
	c, _ := w.Creep("builder-0")
	assert.Equal(t, 9, c.Store.Used)
}

func TestLinkTransferLosesEnergy(t *testing.T) {
	w := New(Options{Radius: 8})
	from := w.AddStructure(world.Structure{Kind: world.KindLink, Store: world.Store{Used: 800}})
	to := w.AddStructure(world.Structure{Kind: world.KindLink, Pos: world.HexCoord{Q: 4, R: 0}})

	require.NoError(t, w.TransferEnergy(from, to))
	src, _ := w.Structure(from)
	dst, _ := w.Structure(to)
	assert.Equal(t, 0, src.Store.Used)
	assert.Equal(t, 776, dst.Store.Used)

	w.SetStore(from, 100)
	assert.ErrorIs(t, w.TransferEnergy(from, to), world.ErrBusy)
	for tick := uint64(1); tick <= 4; tick++ {
		w.Advance(tick)
	}
	require.NoError(t, w.TransferEnergy(from, to))
}

func TestRaidEndsSoonerWithTower(t *testing.T) {
	w := New(Options{Radius: 6, RaidEvery: 10, RaidLength: 6})
	tower := w.AddStructure(world.Structure{Kind: world.KindTower, Store: world.Store{Used: 1000}})

	for tick := uint64(1); tick <= 10; tick++ {
		w.Advance(tick)
	}
	assert.True(t, w.HostilesPresent(w.Region()))

	w.Advance(11)
	w.Advance(12)
	assert.False(t, w.HostilesPresent(w.Region()))
	st, _ := w.Structure(tower)
	assert.Equal(t, 1000-3*TowerShotCost, st.Store.Used)
	assert.Equal(t, 1, w.Stats().Raids)
}

func TestSourcesRegenerate(t *testing.T) {
	w := New(Options{Radius: 6, SourceRegenTicks: 5})
	src := w.AddSource(world.Source{})
	w.SetSourceEnergy(src, 0)
	for tick := uint64(1); tick <= 5; tick++ {
		w.Advance(tick)
	}
	s, _ := w.Source(src)
	assert.Equal(t, s.EnergyCapacity, s.Energy)
}

func TestCreepsExpire(t *testing.T) {
	w := New(Options{Radius: 6})
	w.AddCreep(world.Creep{Name: "generic-0", Body: body, TicksToLive: 2})
	w.Advance(1)
	_, ok := w.Creep("generic-0")
	assert.True(t, ok)
	w.Advance(2)
	_, ok = w.Creep("generic-0")
	assert.False(t, ok)
	assert.Equal(t, 1, w.Stats().Died)
}

func TestDefaultLayoutIsConnected(t *testing.T) {
	gen := world.DefaultGenConfig()
	gen.Seed = 7
	w := New(Options{Radius: gen.Radius, Terrain: world.GenerateRegion(gen)})
	layout := DefaultLayout()
	placed := w.Populate(layout)

	require.Len(t, placed.Links, 1)
	assert.Len(t, w.Sources(w.Region()), 2)
	assert.Len(t, w.ConstructionSites(w.Region()), len(layout.Sites))
	sp, ok := w.Spawn("Spawn1")
	require.True(t, ok)
	assert.Equal(t, placed.Spawn, sp.ID)

	for _, plan := range layout.Sources {
		w.AddCreep(world.Creep{Name: "walker", Pos: world.HexCoord{Q: 1, R: 0}, Body: body})
		for tick := uint64(1); tick <= 60; tick++ {
			_ = w.MoveToward("walker", plan.Post, world.MoveOptions{})
			w.Advance(tick)
		}
		c, _ := w.Creep("walker")
		assert.Equal(t, plan.Post, c.Pos, "post %s reachable", plan.Post)
		require.NoError(t, w.Suicide("walker"))
	}
}
