// Command colony runs the worker colony on the sandbox world and serves it
// over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/api"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/memory"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/resolver"
	"github.com/talgya/colony/internal/sandbox"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

func main() {
	configPath := flag.String("config", "colony.yaml", "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("colony starting", "region", cfg.Region, "agents", len(cfg.Agents), "seed", cfg.Seed)

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	runID, err := db.StartRun()
	if err != nil {
		slog.Error("failed to record run", "error", err)
		os.Exit(1)
	}

	startTick, err := db.LastTick()
	if err != nil {
		slog.Error("failed to read last tick", "error", err)
		os.Exit(1)
	}

	mem := memory.NewMap()
	flags, err := db.LoadWorkingFlags()
	if err != nil {
		slog.Error("failed to load working flags", "error", err)
		os.Exit(1)
	}
	mem.Restore(flags)

	previous, err := db.LoadAgents()
	if err != nil {
		slog.Error("failed to load saved roster", "error", err)
		os.Exit(1)
	}
	for _, a := range previous {
		slog.Debug("saved agent", "agent", a.Name, "state", a.State, "target", a.Target, "tick", a.SavedTick)
	}
	if len(previous) > 0 {
		slog.Info("previous roster found", "agents", len(previous), "saved_tick", previous[0].SavedTick)
	}

	// ── World (regenerated from the seed on every start) ─────────────
	opts := cfg.SandboxOptions()
	if cfg.Seed != 0 {
		gen := world.DefaultGenConfig()
		gen.Radius = cfg.World.Radius
		gen.Seed = cfg.Seed
		opts.Terrain = world.GenerateRegion(gen)
		for t, c := range world.TerrainCounts(opts.Terrain) {
			slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
		}
	}
	sim := sandbox.New(opts)
	layout := sandbox.DefaultLayout()
	layout.SpawnName = cfg.Spawn
	placed := sim.Populate(layout)

	pairs := make([]engine.LinkPair, 0, len(placed.Links)+len(cfg.Links))
	for _, p := range placed.Links {
		pairs = append(pairs, engine.LinkPair{From: p[0], To: p[1]})
	}
	pairs = append(pairs, cfg.Links...)

	// ── Colony ────────────────────────────────────────────────────────
	res := resolver.New(sim, mem, cfg.ResolverSettings())
	driver := agents.NewDriver(sim, res, work.New(sim, mem, cfg.WorkSettings()), cfg.Spawn)
	roster := agents.Bootstrap(cfg.Agents, cfg.Region, sim)
	colony := engine.NewColony(sim, cfg.Region, roster, driver, mem, pairs)
	colony.LastTick = startTick
	colony.Record(startTick, "colony", fmt.Sprintf("run %s started with %d agents", runID, len(roster)))

	slog.Info("colony ready",
		"run_id", runID,
		"agents", len(roster),
		"hexes", sim.Terrain(cfg.Region).HexCount(),
		"links", len(pairs),
		"start_tick", startTick,
	)

	eng := engine.NewEngine(startTick)
	eng.Interval = cfg.Interval()
	eng.SetSpeed(cfg.Engine.Speed)
	eng.MaxTicks = cfg.Engine.MaxTicks
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.SaveEvery = cfg.Engine.SaveEvery

	eng.OnTick = colony.Tick
	eng.OnReport = func(tick uint64) {
		snap := colony.Snapshot()
		st := sim.Stats()
		slog.Info("colony report",
			"tick", humanize.Comma(int64(tick)),
			"alive", fmt.Sprintf("%d/%d", snap.Stats.Alive, snap.Stats.Agents),
			"creeps", len(sim.Creeps()),
			"energy", snap.Stats.EnergyAvailable,
			"stored", humanize.Comma(int64(snap.Stats.StoredEnergy)),
			"sites", snap.Stats.Sites,
			"harvested", humanize.Comma(int64(st.Harvested)),
			"upgraded", humanize.Comma(int64(sim.ControllerProgress(placed.Controller))),
			"spawned", st.Spawned,
			"died", st.Died,
			"raids", st.Raids,
		)
	}
	eng.OnSave = func(tick uint64) {
		if err := db.SaveColonyState(colony); err != nil {
			slog.Error("periodic save failed", "tick", tick, "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn(config.EnvAdminKey + " not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Colony:     colony,
		Eng:        eng,
		DB:         db,
		Resolver:   res,
		Port:       cfg.API.Port,
		AdminKey:   cfg.API.AdminKey,
		RunID:      runID,
		StreamRate: cfg.API.StreamRate,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nColony %s is alive: %d agents in %s.\n", runID, len(roster), cfg.Region)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %s\n", humanize.Comma(int64(startTick)))
	}
	fmt.Println("Starting colony... (Ctrl+C to stop)")

	eng.Run()

	slog.Info("final save...")
	if err := db.SaveColonyState(colony); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Colony stopped. State saved.")
}
