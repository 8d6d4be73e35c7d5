// Package persistence archives finished and in-progress runs: per-tick state
// reports, events, and the final result. Archived runs are read back for
// reporting only; a simulation never resumes from the archive.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/talgya/starfield/internal/engine"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Archive wraps a SQL connection for run storage.
type Archive struct {
	conn *sqlx.DB
}

// RunRecord describes one archived run.
type RunRecord struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Planets   int       `db:"planets" json:"planets"`
	Asteroids int       `db:"asteroids" json:"asteroids"`
	Routes    int       `db:"routes" json:"routes"`
	Steps     int       `db:"steps" json:"steps"`
	Seed      int64     `db:"seed" json:"seed"`
	Layout    string    `db:"layout" json:"layout"`
}

// ResultRecord is the archived outcome of a run.
type ResultRecord struct {
	RunID  string  `db:"run_id" json:"run_id"`
	Found  bool    `db:"found" json:"found"`
	Winner string  `db:"winner" json:"winner"`
	Tier   string  `db:"tier" json:"tier"`
	Money  float64 `db:"money" json:"money"`
	Tick   int64   `db:"tick" json:"tick"`
}

// Open opens or creates an archive. An empty driver means SQLite.
func Open(driver, dsn string) (*Archive, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// One writer; avoids SQLITE_BUSY between pooled connections.
		conn.SetMaxOpenConns(1)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		planets INTEGER NOT NULL,
		asteroids INTEGER NOT NULL,
		routes INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		layout TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		tick BIGINT NOT NULL,
		state_json TEXT NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS events (
		run_id TEXT NOT NULL,
		seq BIGINT NOT NULL,
		tick BIGINT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT PRIMARY KEY,
		found BOOLEAN NOT NULL,
		winner TEXT NOT NULL,
		tier TEXT NOT NULL,
		money DOUBLE PRECISION NOT NULL,
		tick BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// BeginRun records a new run.
func (a *Archive) BeginRun(r RunRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := a.conn.NamedExec(`INSERT INTO runs
		(id, created_at, planets, asteroids, routes, steps, seed, layout)
		VALUES (:id, :created_at, :planets, :asteroids, :routes, :steps, :seed, :layout)`, r)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// SaveReport stores one tick's state and its events in a single transaction.
func (a *Archive) SaveReport(rep engine.Report) error {
	state, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := a.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(tx.Rebind("INSERT INTO snapshots (run_id, tick, state_json) VALUES (?, ?, ?)"),
		rep.RunID, int64(rep.Tick), string(state)); err != nil {
		return fmt.Errorf("insert snapshot %d: %w", rep.Tick, err)
	}

	if len(rep.Events) > 0 {
		var seq int64
		if err := tx.Get(&seq, tx.Rebind("SELECT COALESCE(MAX(seq), 0) FROM events WHERE run_id = ?"), rep.RunID); err != nil {
			return fmt.Errorf("next event seq: %w", err)
		}
		stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO events
			(run_id, seq, tick, description, category) VALUES (?, ?, ?, ?, ?)`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range rep.Events {
			seq++
			if _, err := stmt.Exec(rep.RunID, seq, int64(e.Tick), e.Description, e.Category); err != nil {
				return fmt.Errorf("insert event %d: %w", seq, err)
			}
		}
	}

	return tx.Commit()
}

// SaveResult stores the run outcome.
func (a *Archive) SaveResult(runID string, res engine.Result) error {
	_, err := a.conn.Exec(a.conn.Rebind(`INSERT INTO results
		(run_id, found, winner, tier, money, tick) VALUES (?, ?, ?, ?, ?, ?)`),
		runID, res.Found, res.Name, res.Tier, res.Money, int64(res.Tick))
	if err != nil {
		return fmt.Errorf("insert result %s: %w", runID, err)
	}
	slog.Info("run archived", "run", runID, "winner", res.Name)
	return nil
}

// Runs lists archived runs, newest first.
func (a *Archive) Runs() ([]RunRecord, error) {
	var runs []RunRecord
	err := a.conn.Select(&runs, `SELECT id, created_at, planets, asteroids, routes, steps, seed, layout
		FROM runs ORDER BY created_at DESC, id`)
	return runs, err
}

// Result returns the outcome of a run.
func (a *Archive) Result(runID string) (ResultRecord, error) {
	var r ResultRecord
	err := a.conn.Get(&r, a.conn.Rebind(`SELECT run_id, found, winner, tier, money, tick
		FROM results WHERE run_id = ?`), runID)
	return r, err
}

// Snapshot returns the state report stored for one tick.
func (a *Archive) Snapshot(runID string, tick uint64) (engine.Report, error) {
	var state string
	var rep engine.Report
	err := a.conn.Get(&state, a.conn.Rebind("SELECT state_json FROM snapshots WHERE run_id = ? AND tick = ?"),
		runID, int64(tick))
	if err != nil {
		return rep, err
	}
	if err := json.Unmarshal([]byte(state), &rep); err != nil {
		return rep, fmt.Errorf("decode snapshot %d: %w", tick, err)
	}
	return rep, nil
}

// RunExists reports whether a run has been recorded.
func (a *Archive) RunExists(runID string) (bool, error) {
	var n int
	err := a.conn.Get(&n, a.conn.Rebind("SELECT COUNT(*) FROM runs WHERE id = ?"), runID)
	return n > 0, err
}

// RecentEvents returns the most recent events of a run, newest first. A
// non-empty category restricts the search before the limit applies. An
// unknown run yields sql.ErrNoRows.
func (a *Archive) RecentEvents(runID, category string, limit int) ([]engine.Event, error) {
	ok, err := a.RunExists(runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, sql.ErrNoRows)
	}

	query := "SELECT tick, description, category FROM events WHERE run_id = ?"
	args := []any{runID}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	events := []engine.Event{}
	if err := a.conn.Select(&events, a.conn.Rebind(query), args...); err != nil {
		return nil, err
	}
	return events, nil
}
