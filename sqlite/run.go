package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/cmtharvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ cmtharvest.RunService = (*RunService)(nil)

// RunService implements cmtharvest.RunService using SQLite.
// Records are stored one row per field so that field order and the exact
// source text survive a round trip.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

const runColumns = `id, start_year, end_year, outcome, pages, blocks, records, warnings,
	corpus_hash, table_path, error, started_at, finished_at`

// CreateRun records a run and the records it produced in one transaction.
// An empty run ID is assigned a new UUID.
func (s *RunService) CreateRun(ctx context.Context, run *cmtharvest.Run, ds *cmtharvest.Dataset) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	run.StartedAt = run.StartedAt.UTC().Truncate(time.Second)
	run.FinishedAt = run.FinishedAt.UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartYear, run.EndYear, string(run.Outcome), run.Pages, run.Blocks,
		run.Records, run.Warnings, run.CorpusHash, run.TablePath, run.Error,
		run.StartedAt.Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	if ds != nil {
		if err := insertDataset(ctx, tx, run.ID, ds); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertDataset(ctx context.Context, tx *sql.Tx, runID string, ds *cmtharvest.Dataset) error {
	fieldStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fields (run_id, record, position, name, raw, number)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer fieldStmt.Close()

	for i, rec := range ds.Records {
		for j, name := range rec.Fields() {
			v, _ := rec.Get(name)
			var number sql.NullFloat64
			if v.Numeric {
				number = sql.NullFloat64{Float64: v.Number, Valid: true}
			}
			if _, err := fieldStmt.ExecContext(ctx, runID, i, j, name, v.Raw, number); err != nil {
				return err
			}
		}
	}

	warnStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO warnings (run_id, position, kind, line, field, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer warnStmt.Close()

	for i, w := range ds.Warnings {
		if _, err := warnStmt.ExecContext(ctx, runID, i, string(w.Kind), w.Line, w.Field, w.Text); err != nil {
			return err
		}
	}
	return nil
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*cmtharvest.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, cmtharvest.Errorf(cmtharvest.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter cmtharvest.RunFilter) ([]*cmtharvest.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + runColumns + " FROM runs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Outcome != nil {
		query.WriteString(" AND outcome = ?")
		args = append(args, string(*filter.Outcome))
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, max(filter.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*cmtharvest.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// FindRecords rebuilds the dataset recorded for a run.
func (s *RunService) FindRecords(ctx context.Context, runID string) (*cmtharvest.Dataset, error) {
	if _, err := s.FindRunByID(ctx, runID); err != nil {
		return nil, err
	}

	ds := &cmtharvest.Dataset{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record, name, raw, number
		FROM fields
		WHERE run_id = ?
		ORDER BY record, position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rec *cmtharvest.Record
	current := -1
	for rows.Next() {
		var (
			index  int
			name   string
			raw    string
			number sql.NullFloat64
		)
		if err := rows.Scan(&index, &name, &raw, &number); err != nil {
			return nil, err
		}
		if index != current {
			rec = cmtharvest.NewRecord()
			ds.Records = append(ds.Records, rec)
			current = index
		}
		if number.Valid {
			rec.Set(name, cmtharvest.NumberValue(raw, number.Float64))
		} else {
			rec.Set(name, cmtharvest.TextValue(raw))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	warnings, err := s.findWarnings(ctx, runID)
	if err != nil {
		return nil, err
	}
	ds.Warnings = warnings

	return ds, nil
}

func (s *RunService) findWarnings(ctx context.Context, runID string) ([]cmtharvest.Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, line, field, text
		FROM warnings
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []cmtharvest.Warning
	for rows.Next() {
		var w cmtharvest.Warning
		var kind string
		if err := rows.Scan(&kind, &w.Line, &w.Field, &w.Text); err != nil {
			return nil, err
		}
		w.Kind = cmtharvest.WarningKind(kind)
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

// DeleteRun permanently removes a run and, by cascade, its records.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return cmtharvest.Errorf(cmtharvest.ENOTFOUND, "run not found")
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*cmtharvest.Run, error) {
	var run cmtharvest.Run
	var outcome, startedAt, finishedAt string

	if err := row.Scan(&run.ID, &run.StartYear, &run.EndYear, &outcome, &run.Pages, &run.Blocks,
		&run.Records, &run.Warnings, &run.CorpusHash, &run.TablePath, &run.Error,
		&startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.Outcome = cmtharvest.Outcome(outcome)

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("run %s: started_at: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return nil, fmt.Errorf("run %s: finished_at: %w", run.ID, err)
	}
	return &run, nil
}
