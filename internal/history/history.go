// Package history persists completed generation runs for cmd/server's
// audit trail. This is distinct from the "persistent search state across
// invocations" Non-goal in spec.md section 1: that Non-goal excludes
// resuming an annealer mid-search, not recording a finished result for
// later lookup — the same separation noah-isme-sma-adp-api draws between
// its request-scoped services and its repository layer.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusplan/timetable/internal/engine"
)

// RunRecord is one persisted Generate() call.
type RunRecord struct {
	ID               string    `db:"id"`
	ConfigHash       string    `db:"config_hash"`
	Seed             int64     `db:"seed"`
	TeacherConflicts int       `db:"teacher_conflicts"`
	Unscheduled      int       `db:"unscheduled_periods"`
	IterationsRun    int       `db:"iterations_run"`
	ScheduleJSON     []byte    `db:"schedule_json"`
	CreatedAt        time.Time `db:"created_at"`
}

// Store wraps a sqlx.DB against the "runs" table.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-open sqlx.DB (typically opened with the "postgres"
// driver from lib/pq).
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                   UUID PRIMARY KEY,
	config_hash          TEXT NOT NULL,
	seed                 BIGINT NOT NULL,
	teacher_conflicts    INTEGER NOT NULL,
	unscheduled_periods  INTEGER NOT NULL,
	iterations_run       INTEGER NOT NULL,
	schedule_json        JSONB NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate creates the runs table if it does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save persists one run, encoding its schedule view as JSON.
func (s *Store) Save(ctx context.Context, id string, configHash string, result engine.Result) error {
	scheduleJSON, err := json.Marshal(result.Schedule)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config_hash, seed, teacher_conflicts, unscheduled_periods, iterations_run, schedule_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, configHash, int64(result.SeedUsed), result.Metrics.TeacherConflicts,
		result.Metrics.Unscheduled, result.IterationsRun, scheduleJSON,
	)
	return err
}

// Get reads back a previously-saved run by ID.
func (s *Store) Get(ctx context.Context, id string) (*RunRecord, error) {
	var rec RunRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM runs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
