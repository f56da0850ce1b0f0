// Package persistence provides SQLite-based colony state storage.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/engine"
)

// Metadata keys.
const (
	MetaLastTick = "last_tick"
	MetaRunID    = "run_id"
	MetaRuns     = "runs"
)

// DB wraps a SQLite connection for colony state persistence.
type DB struct {
	conn *sqlx.DB
}

// AgentRow is the saved form of one agent.
type AgentRow struct {
	Name      string `db:"name" json:"name"`
	Role      string `db:"role" json:"role"`
	Ordinal   int    `db:"ordinal" json:"ordinal"`
	Region    string `db:"region" json:"region"`
	EntityID  string `db:"entity_id" json:"entity_id"`
	State     string `db:"state" json:"state"`
	Target    string `db:"target" json:"target"`
	Energy    int    `db:"energy" json:"energy"`
	SavedTick uint64 `db:"saved_tick" json:"saved_tick"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		name TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		region TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		state TEXT NOT NULL,
		target TEXT NOT NULL,
		energy INTEGER NOT NULL,
		saved_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS working_flags (
		name TEXT PRIMARY KEY,
		working INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		agent TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_agent ON events(agent);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveAgents writes all agent summaries to the database (full replace).
func (db *DB) SaveAgents(tick uint64, list []agents.Summary) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO agents
		(name, role, ordinal, region, entity_id, state, target, energy, saved_tick)
		VALUES (:name, :role, :ordinal, :region, :entity_id, :state, :target, :energy, :saved_tick)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range list {
		row := AgentRow{
			Name:      a.Name,
			Role:      a.Role,
			Ordinal:   a.Ordinal,
			Region:    a.Region,
			EntityID:  string(a.EntityID),
			State:     a.State,
			Target:    a.Target,
			Energy:    a.Energy,
			SavedTick: tick,
		}
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("insert agent %s: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

// LoadAgents returns the agents saved by the last SaveAgents, by name.
func (db *DB) LoadAgents() ([]AgentRow, error) {
	var rows []AgentRow
	err := db.conn.Select(&rows, "SELECT * FROM agents ORDER BY name")
	return rows, err
}

// SaveWorkingFlags writes the working flags (full replace).
func (db *DB) SaveWorkingFlags(flags map[string]bool) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM working_flags"); err != nil {
		return err
	}
	for name, working := range flags {
		if _, err := tx.Exec("INSERT INTO working_flags (name, working) VALUES (?, ?)", name, working); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadWorkingFlags reads the saved working flags.
func (db *DB) LoadWorkingFlags() (map[string]bool, error) {
	var rows []struct {
		Name    string `db:"name"`
		Working bool   `db:"working"`
	}
	if err := db.conn.Select(&rows, "SELECT name, working FROM working_flags"); err != nil {
		return nil, err
	}
	flags := make(map[string]bool, len(rows))
	for _, r := range rows {
		flags[r.Name] = r.Working
	}
	return flags, nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.NamedExec(
			"INSERT INTO events (tick, agent, description, category) VALUES (:tick, :agent, :description, :category)",
			e,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in colony metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key is returned as an
// empty string without error.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// LastTick returns the tick of the last save, or 0.
func (db *DB) LastTick() (uint64, error) {
	v, err := db.GetMeta(MetaLastTick)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

// StartRun records a new run and returns its ID.
func (db *DB) StartRun() (string, error) {
	id := uuid.NewString()
	runs := 0
	if v, err := db.GetMeta(MetaRuns); err != nil {
		return "", err
	} else if v != "" {
		runs, _ = strconv.Atoi(v)
	}
	if err := db.SaveMeta(MetaRuns, strconv.Itoa(runs+1)); err != nil {
		return "", err
	}
	if err := db.SaveMeta(MetaRunID, id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveColonyState performs a full save of the colony: agents, working
// flags, events recorded since the last save and the tick.
func (db *DB) SaveColonyState(c *engine.Colony) error {
	snap := c.Snapshot()
	slog.Info("saving colony state", "agents", len(snap.Agents), "tick", snap.Tick)

	if err := db.SaveAgents(snap.Tick, snap.Agents); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	if err := db.SaveWorkingFlags(c.Memory.Snapshot()); err != nil {
		return fmt.Errorf("save working flags: %w", err)
	}
	events := c.TakeUnsaved()
	if err := db.SaveEvents(events); err != nil {
		c.Requeue(events)
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta(MetaLastTick, strconv.FormatUint(snap.Tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("colony state saved")
	return nil
}

// RecentEvents returns the most recent N events, oldest first, matching
// Colony.RecentEvents.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events, `
		SELECT tick, agent, description, category FROM (
			SELECT id, tick, agent, description, category FROM events ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		limit,
	)
	return events, err
}
