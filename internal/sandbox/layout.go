package sandbox

import "github.com/talgya/colony/internal/world"

// Layout positions the structures of a starting colony.
type Layout struct {
	SpawnName   string
	Spawn       world.HexCoord
	Extensions  []world.HexCoord
	Storage     world.HexCoord
	StorageLink world.HexCoord
	Controller  world.HexCoord
	Tower       world.HexCoord
	Sources     []SourcePlan
	Sites       []SitePlan

	SpawnEnergy   int
	StorageEnergy int
	TowerEnergy   int
}

// SourcePlan is one source with the miner post beside it. A post gets a
// container; Link, when set, places a link next to the post.
type SourcePlan struct {
	ID   world.ObjectID
	Pos  world.HexCoord
	Post world.HexCoord
	Link *world.HexCoord
}

// SitePlan is a construction site to place at start.
type SitePlan struct {
	Kind world.StructureKind
	Pos  world.HexCoord
}

// Placed reports the IDs created by Populate.
type Placed struct {
	Spawn      world.ObjectID
	Storage    world.ObjectID
	Controller world.ObjectID
	// Links pairs each source link with the storage link it feeds.
	Links [][2]world.ObjectID
}

// DefaultLayout is the colony used by the binary. Miner posts match the
// default miner offsets: ordinal 0 sits north of source-a, ordinal 1 south
// of source-b.
func DefaultLayout() Layout {
	sourceLink := world.HexCoord{Q: 9, R: -10}
	return Layout{
		SpawnName: "Spawn1",
		Spawn:     world.HexCoord{},
		Extensions: []world.HexCoord{
			{Q: 2, R: -2}, {Q: 2, R: 0}, {Q: 0, R: 2}, {Q: -2, R: 2}, {Q: -2, R: 0},
		},
		Storage:     world.HexCoord{Q: 4, R: 2},
		StorageLink: world.HexCoord{Q: 5, R: 1},
		Controller:  world.HexCoord{Q: -6, R: 3},
		Tower:       world.HexCoord{Q: -1, R: -3},
		Sources: []SourcePlan{
			{ID: "source-a", Pos: world.HexCoord{Q: 8, R: -9}, Post: world.HexCoord{Q: 8, R: -10}, Link: &sourceLink},
			{ID: "source-b", Pos: world.HexCoord{Q: -8, R: 7}, Post: world.HexCoord{Q: -8, R: 8}},
		},
		Sites: []SitePlan{
			{Kind: world.KindContainer, Pos: world.HexCoord{Q: -4, R: 1}},
			{Kind: world.KindExtension, Pos: world.HexCoord{Q: 0, R: -2}},
			{Kind: world.KindRoad, Pos: world.HexCoord{Q: 1, R: -3}},
			{Kind: world.KindRoad, Pos: world.HexCoord{Q: 2, R: -4}},
		},
		SpawnEnergy:   300,
		StorageEnergy: 1000,
		TowerEnergy:   500,
	}
}

// positions lists every hex the layout occupies.
func (l Layout) positions() []world.HexCoord {
	out := []world.HexCoord{l.Spawn, l.Storage, l.StorageLink, l.Controller, l.Tower}
	out = append(out, l.Extensions...)
	for _, s := range l.Sources {
		out = append(out, s.Pos, s.Post)
		if s.Link != nil {
			out = append(out, *s.Link)
		}
	}
	for _, s := range l.Sites {
		out = append(out, s.Pos)
	}
	return out
}

// Extent is the largest distance of any placed object from the map centre.
// A region needs at least this radius to hold the layout.
func (l Layout) Extent() int {
	n := 0
	for _, pos := range l.positions() {
		n = max(n, world.Distance(pos, world.HexCoord{}))
	}
	return n
}

// clearTerrain opens the ground around every placed object and along the
// line from the spawn to it, so generated walls never cut the colony apart.
func (l Layout) clearTerrain(m *world.Map) {
	for _, pos := range l.positions() {
		m.Clear(pos, 1)
		for _, step := range world.Line(l.Spawn, pos) {
			m.Clear(step, 1)
		}
	}
}

// Populate places the layout in the home region.
func (w *World) Populate(l Layout) Placed {
	region := w.opts.Region
	if m := w.maps[region]; m != nil {
		l.clearTerrain(m)
	}

	var p Placed
	p.Spawn = w.AddStructure(world.Structure{
		Kind: world.KindSpawn, Name: l.SpawnName, Pos: l.Spawn,
		Store: world.Store{Used: l.SpawnEnergy, Capacity: defaultCapacity[world.KindSpawn]},
	})
	for _, pos := range l.Extensions {
		w.AddStructure(world.Structure{Kind: world.KindExtension, Pos: pos})
	}
	p.Storage = w.AddStructure(world.Structure{
		Kind: world.KindStorage, Pos: l.Storage,
		Store: world.Store{Used: l.StorageEnergy, Capacity: defaultCapacity[world.KindStorage]},
	})
	storageLink := w.AddStructure(world.Structure{Kind: world.KindLink, Pos: l.StorageLink})
	p.Controller = w.AddStructure(world.Structure{Kind: world.KindController, Pos: l.Controller})
	w.AddStructure(world.Structure{
		Kind: world.KindTower, Pos: l.Tower,
		Store: world.Store{Used: l.TowerEnergy, Capacity: defaultCapacity[world.KindTower]},
	})

	for _, s := range l.Sources {
		w.AddSource(world.Source{ID: s.ID, Pos: s.Pos})
		w.AddStructure(world.Structure{Kind: world.KindContainer, Pos: s.Post})
		if s.Link != nil {
			link := w.AddStructure(world.Structure{Kind: world.KindLink, Pos: *s.Link})
			p.Links = append(p.Links, [2]world.ObjectID{link, storageLink})
		}
	}
	for _, s := range l.Sites {
		w.AddSite(world.ConstructionSite{Kind: s.Kind, Pos: s.Pos})
	}
	return p
}
