package work

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colony/internal/memory"
	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/sandbox"
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/world"
)

type fixture struct {
	w   *sandbox.World
	mem *memory.Map
	ex  *Executor
}

func newFixture() *fixture {
	w := sandbox.New(sandbox.Options{Radius: 8})
	mem := memory.NewMap()
	return &fixture{w: w, mem: mem, ex: New(w, mem, DefaultConfig())}
}

// creep places a finished creep of the role and returns its subject.
func (f *fixture) creep(name string, role roles.Role, pos world.HexCoord, energy int) Subject {
	f.w.AddCreep(world.Creep{Name: name, Pos: pos, Body: roles.Body(role)})
	f.w.SetCreepEnergy(name, energy)
	return f.subject(name, role)
}

func (f *fixture) subject(name string, role roles.Role) Subject {
	c, _ := f.w.Creep(name)
	return Subject{Name: name, Role: role, Creep: c}
}

func ref(id world.ObjectID, pos world.HexCoord) target.Ref {
	return target.Ref{ID: id, Pos: pos}
}

func TestActRejectsParkAndNil(t *testing.T) {
	f := newFixture()
	s := f.creep("hauler-0", roles.RoleHauler, world.HexCoord{}, 0)

	assert.ErrorIs(t, f.ex.Act(s, nil), world.ErrInvalidArgs)
	assert.ErrorIs(t, f.ex.Act(s, target.Park{Ref: ref("storage-1", world.HexCoord{})}), world.ErrInvalidArgs)
}

func TestActTransferAndWithdraw(t *testing.T) {
	f := newFixture()
	ext := f.w.AddStructure(world.Structure{Kind: world.KindExtension, Pos: world.HexCoord{Q: 1, R: 0}})
	box := f.w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: world.HexCoord{Q: 0, R: 1}, Store: world.Store{Used: 500}})
	s := f.creep("hauler-0", roles.RoleHauler, world.HexCoord{}, 0)

	require.NoError(t, f.ex.Act(s, target.FetchFromContainer{Ref: ref(box, world.HexCoord{Q: 0, R: 1})}))
	require.NoError(t, f.ex.Act(s, target.TransferToExtension{Ref: ref(ext, world.HexCoord{Q: 1, R: 0})}))

	c, _ := f.w.Creep("hauler-0")
	assert.Equal(t, 100, c.Store.Used)
	st, _ := f.w.Structure(ext)
	assert.True(t, st.Store.Full())
}

func TestMinerMustStandOnPost(t *testing.T) {
	f := newFixture()
	src := f.w.AddSource(world.Source{Pos: world.HexCoord{Q: 2, R: 0}})
	post := world.HexCoord{Q: 2, R: -1}
	s := f.creep("miner-0", roles.RoleMiner, world.HexCoord{Q: 1, R: 0}, 0)
	tgt := target.FetchFromSource{Ref: ref(src, world.HexCoord{Q: 2, R: 0}), Post: &post}

	assert.ErrorIs(t, f.ex.Act(s, tgt), world.ErrNoPath, "adjacent but off post")

	require.NoError(t, f.ex.Approach(s, tgt))
	s = f.subject("miner-0", roles.RoleMiner)
	assert.Equal(t, post, s.Creep.Pos)

	require.NoError(t, f.ex.Act(s, tgt))
	c, _ := f.w.Creep("miner-0")
	assert.Equal(t, 2*sandbox.HarvestPerWork, c.Store.Used)
}

func TestMinerRepairsDamagedContainerFirst(t *testing.T) {
	f := newFixture()
	src := f.w.AddSource(world.Source{Pos: world.HexCoord{Q: 1, R: 0}})
	post := world.HexCoord{}
	box := f.w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: post})
	st, _ := f.w.Structure(box)
	f.w.SetHits(box, st.HitsMax-250)
	s := f.creep("miner-0", roles.RoleMiner, post, 10)
	tgt := target.FetchFromSource{Ref: ref(src, world.HexCoord{Q: 1, R: 0}), Post: &post}

	assert.ErrorIs(t, f.ex.Act(s, tgt), world.ErrBusy)
	st, _ = f.w.Structure(box)
	assert.Equal(t, 50, st.Damage())

	s = f.subject("miner-0", roles.RoleMiner)
	require.NoError(t, f.ex.Act(s, tgt), "damage below 2 work * 100 is left alone")
}

func TestApproachRepairsRoadUnderfoot(t *testing.T) {
	f := newFixture()
	road := f.w.AddStructure(world.Structure{Kind: world.KindRoad})
	f.w.SetHits(road, 1000)
	ctl := f.w.AddStructure(world.Structure{Kind: world.KindController, Pos: world.HexCoord{Q: 6, R: 0}})
	s := f.creep("builder-0", roles.RoleBuilder, world.HexCoord{}, 50)
	tgt := target.Upgrade{Ref: ref(ctl, world.HexCoord{Q: 6, R: 0})}

	assert.ErrorIs(t, f.ex.Approach(s, tgt), world.ErrBusy)
	c, _ := f.w.Creep("builder-0")
	assert.Equal(t, world.HexCoord{}, c.Pos)
	assert.Equal(t, 48, c.Store.Used)

	f.w.SetHits(road, 5000)
	s = f.subject("builder-0", roles.RoleBuilder)
	require.NoError(t, f.ex.Approach(s, tgt))
	c, _ = f.w.Creep("builder-0")
	assert.Equal(t, 1, world.Distance(c.Pos, world.HexCoord{}))
}

func TestApproachStopsAtActionRange(t *testing.T) {
	f := newFixture()
	site := f.w.AddSite(world.ConstructionSite{Kind: world.KindRoad, Pos: world.HexCoord{Q: 5, R: 0}})
	f.creep("builder-0", roles.RoleBuilder, world.HexCoord{}, 50)
	tgt := target.Build{Ref: ref(site, world.HexCoord{Q: 5, R: 0})}

	for i := 0; i < 5; i++ {
		require.NoError(t, f.ex.Approach(f.subject("builder-0", roles.RoleBuilder), tgt))
	}
	c, _ := f.w.Creep("builder-0")
	assert.Equal(t, world.RangeWork, world.Distance(c.Pos, world.HexCoord{Q: 5, R: 0}))
	require.NoError(t, f.ex.Act(f.subject("builder-0", roles.RoleBuilder), tgt))
}

func TestDoneFetchFullSetsWorking(t *testing.T) {
	f := newFixture()
	box := f.w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: world.HexCoord{Q: 1, R: 0}, Store: world.Store{Used: 1000}})
	tgt := target.FetchFromContainer{Ref: ref(box, world.HexCoord{Q: 1, R: 0})}
	f.mem.SetWorking("hauler-0", false)

	s := f.creep("hauler-0", roles.RoleHauler, world.HexCoord{}, 100)
	assert.False(t, f.ex.Done(s, tgt))

	f.w.SetCreepEnergy("hauler-0", 150)
	assert.True(t, f.ex.Done(f.subject("hauler-0", roles.RoleHauler), tgt))
	working, set := f.mem.Working("hauler-0")
	assert.True(t, set)
	assert.True(t, working)
}

func TestDoneFetchBelowCarryLoad(t *testing.T) {
	f := newFixture()
	box := f.w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: world.HexCoord{Q: 1, R: 0}, Store: world.Store{Used: 100}})
	tgt := target.FetchFromContainer{Ref: ref(box, world.HexCoord{Q: 1, R: 0})}
	f.mem.SetWorking("hauler-0", false)
	s := f.creep("hauler-0", roles.RoleHauler, world.HexCoord{}, 0)

	assert.True(t, f.ex.Done(s, tgt), "100 is below the 150 carry load")
	working, _ := f.mem.Working("hauler-0")
	assert.False(t, working)
}

func TestDoneSourceDepleted(t *testing.T) {
	f := newFixture()
	src := f.w.AddSource(world.Source{Pos: world.HexCoord{Q: 1, R: 0}})
	f.w.SetSourceEnergy(src, 0)
	tgt := target.FetchFromSource{Ref: ref(src, world.HexCoord{Q: 1, R: 0})}

	f.mem.SetWorking("builder-0", false)
	empty := f.creep("builder-0", roles.RoleBuilder, world.HexCoord{}, 0)
	assert.True(t, f.ex.Done(empty, tgt))
	working, _ := f.mem.Working("builder-0")
	assert.False(t, working, "nothing carried, flag stays down")

	f.mem.SetWorking("builder-1", false)
	loaded := f.creep("builder-1", roles.RoleBuilder, world.HexCoord{Q: 0, R: 1}, 20)
	assert.True(t, f.ex.Done(loaded, tgt))
	working, _ = f.mem.Working("builder-1")
	assert.True(t, working)
}

func TestDoneMinerOnlyWhenUnloadingToLink(t *testing.T) {
	f := newFixture()
	src := f.w.AddSource(world.Source{Pos: world.HexCoord{Q: 1, R: 0}})
	post := world.HexCoord{}
	box := f.w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: post, Store: world.Store{Used: 2000}})
	tgt := target.FetchFromSource{Ref: ref(src, world.HexCoord{Q: 1, R: 0}), Post: &post}

	s := f.creep("miner-0", roles.RoleMiner, post, 50)
	assert.False(t, f.ex.Done(s, tgt), "no link next to the post")

	f.w.AddStructure(world.Structure{Kind: world.KindLink, Pos: world.HexCoord{Q: -1, R: 0}})
	assert.True(t, f.ex.Done(s, tgt))

	f.w.SetStore(box, 1000)
	assert.False(t, f.ex.Done(s, tgt), "container has room")

	f.w.SetSourceEnergy(src, 0)
	f.w.SetCreepEnergy("miner-0", 10)
	assert.False(t, f.ex.Done(f.subject("miner-0", roles.RoleMiner), tgt), "miners wait at an empty source")
}

func TestDoneTransferBuildUpgrade(t *testing.T) {
	f := newFixture()
	ext := f.w.AddStructure(world.Structure{Kind: world.KindExtension, Pos: world.HexCoord{Q: 1, R: 0}, Store: world.Store{Used: 50}})
	ctl := f.w.AddStructure(world.Structure{Kind: world.KindController, Pos: world.HexCoord{Q: 3, R: 0}})
	site := f.w.AddSite(world.ConstructionSite{Kind: world.KindRoad, Pos: world.HexCoord{Q: 2, R: 0}})
	s := f.creep("generic-0", roles.RoleGeneric, world.HexCoord{}, 40)

	assert.True(t, f.ex.Done(s, target.TransferToExtension{Ref: ref(ext, world.HexCoord{Q: 1, R: 0})}), "full extension")
	assert.False(t, f.ex.Done(s, target.Build{Ref: ref(site, world.HexCoord{Q: 2, R: 0})}))
	assert.True(t, f.ex.Done(s, target.Build{Ref: ref("gone", world.HexCoord{Q: 2, R: 0})}))
	assert.False(t, f.ex.Done(s, target.Upgrade{Ref: ref(ctl, world.HexCoord{Q: 3, R: 0})}))
	assert.True(t, f.ex.Done(s, target.Park{Ref: ref("storage-1", world.HexCoord{})}))
	assert.True(t, f.ex.Done(s, nil))

	f.w.SetCreepEnergy("generic-0", 0)
	s = f.subject("generic-0", roles.RoleGeneric)
	assert.True(t, f.ex.Done(s, target.Upgrade{Ref: ref(ctl, world.HexCoord{Q: 3, R: 0})}))
	assert.True(t, f.ex.Done(s, target.Build{Ref: ref(site, world.HexCoord{Q: 2, R: 0})}))
}
