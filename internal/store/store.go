// Package store persists completed projection runs in SQLite. It keeps run
// metadata plus per-step aggregates; full per-age tables live in the JSON
// result document, not here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/signalsfoundry/cohort-simulator/core"
	"github.com/signalsfoundry/cohort-simulator/scalar"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS projection_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT    NOT NULL,
	n_ages        INTEGER NOT NULL,
	n_steps       INTEGER NOT NULL,
	age_span      REAL    NOT NULL,
	created_at_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS projection_step_totals (
	run_id     INTEGER NOT NULL REFERENCES projection_runs(id),
	step       INTEGER NOT NULL,
	population REAL    NOT NULL,
	births     REAL    NOT NULL,
	deaths     REAL    NOT NULL,
	migration  REAL    NOT NULL,
	infants    REAL    NOT NULL,
	PRIMARY KEY (run_id, step)
);
`

// Store persists projection runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Run is the stored metadata of one projection run.
type Run struct {
	ID        int64
	Name      string
	NAges     int
	NSteps    int
	AgeSpan   float64
	CreatedAt time.Time
}

// StepTotals aggregates one projection step: total population at the end of
// the step, plus totals of the step's flows.
type StepTotals struct {
	Step       int
	Population float64
	Births     float64
	Deaths     float64
	Migration  float64
	Infants    float64
}

// Open opens a SQLite store at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun persists a completed projection under the given name and returns
// the run ID.
func (s *Store) SaveRun(ctx context.Context, name string, p *core.PopulationProjection[scalar.F64]) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("store: not configured")
	}
	if name == "" {
		name = "unnamed"
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO projection_runs (name, n_ages, n_steps, age_span, created_at_ms) VALUES (?, ?, ?, ?, ?)`,
		name, p.NAges, p.NSteps, p.AgeSpan.Float(), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO projection_step_totals (run_id, step, population, births, deaths, migration, infants) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("store: prepare step insert: %w", err)
	}
	defer stmt.Close()

	for step := 0; step < p.NSteps; step++ {
		totals := totalsForStep(p, step)
		if _, err := stmt.ExecContext(ctx, runID, step,
			totals.Population, totals.Births, totals.Deaths, totals.Migration, totals.Infants,
		); err != nil {
			return 0, fmt.Errorf("store: insert step %d: %w", step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return runID, nil
}

// GetRun fetches run metadata by ID.
func (s *Store) GetRun(ctx context.Context, runID int64) (Run, error) {
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("store: not configured")
	}
	var run Run
	var createdMs int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, n_ages, n_steps, age_span, created_at_ms FROM projection_runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Name, &run.NAges, &run.NSteps, &run.AgeSpan, &createdMs)
	if err != nil {
		return Run{}, fmt.Errorf("store: get run %d: %w", runID, err)
	}
	run.CreatedAt = time.UnixMilli(createdMs).UTC()
	return run, nil
}

// RunTotals fetches the per-step aggregates of a run, ordered by step.
func (s *Store) RunTotals(ctx context.Context, runID int64) ([]StepTotals, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("store: not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT step, population, births, deaths, migration, infants FROM projection_step_totals WHERE run_id = ? ORDER BY step`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query totals for run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []StepTotals
	for rows.Next() {
		var t StepTotals
		if err := rows.Scan(&t.Step, &t.Population, &t.Births, &t.Deaths, &t.Migration, &t.Infants); err != nil {
			return nil, fmt.Errorf("store: scan totals: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate totals: %w", err)
	}
	return out, nil
}

// totalsForStep sums a completed step's outputs. Population is the total at
// the end of the step (column step+1); the flows are the step's own columns.
func totalsForStep(p *core.PopulationProjection[scalar.F64], step int) StepTotals {
	t := StepTotals{Step: step, Infants: p.Infants[step].Float()}
	for _, v := range p.Population.Col(step + 1) {
		t.Population += v.Float()
	}
	for _, v := range p.Births.Col(step) {
		t.Births += v.Float()
	}
	for _, v := range p.Deaths.Col(step) {
		t.Deaths += v.Float()
	}
	for _, v := range p.Migrations.Col(step) {
		t.Migration += v.Float()
	}
	return t
}
