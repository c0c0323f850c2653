package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"automux/internal/services"
)

// ErrRunNotFound reports an unknown run id.
var ErrRunNotFound = fmt.Errorf("%w: run", services.ErrNotFound)

// ErrAmbiguousID reports a short id prefix matching several runs.
var ErrAmbiguousID = errors.New("ambiguous run id")

const runColumns = "r.id, r.started_at, r.finished_at, r.output, r.status, r.exit_code, r.error, r.dry_run, " +
	"(SELECT COUNT(1) FROM run_inputs i WHERE i.run_id = r.id)"

// Begin records a new running run with its inputs. The run's ID, StartedAt
// and Status are filled in when empty.
func (s *Store) Begin(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("begin run: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}
	run.InputCount = len(run.Inputs)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, started_at, output, status, dry_run) VALUES (?, ?, ?, ?, ?)`,
			run.ID,
			run.StartedAt.UTC().Format(timestampLayout),
			nullableString(run.Output),
			run.Status,
			boolToInt(run.DryRun),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for i := range run.Inputs {
			in := &run.Inputs[i]
			in.Position = i
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_inputs (run_id, position, path, language, forced) VALUES (?, ?, ?, ?, ?)`,
				run.ID, in.Position, in.Path, nullableString(in.Language), boolToInt(in.Forced),
			); err != nil {
				return fmt.Errorf("insert input %q: %w", in.Path, err)
			}
		}
		return tx.Commit()
	})
}

// Finish stores the outcome of a running run.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	if !outcome.Status.Terminal() {
		return fmt.Errorf("finish run %s: status %q is not terminal", id, outcome.Status)
	}
	var exitCode any
	if outcome.ExitCode != nil {
		exitCode = *outcome.ExitCode
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, exit_code = ?, error = ? WHERE id = ?`,
		time.Now().UTC().Format(timestampLayout),
		outcome.Status,
		exitCode,
		nullableString(outcome.Error),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireRow(res, id)
}

// MarkTrashed flags an input of run id as moved to the trash. Paths that are
// not inputs of the run (such as a VobSub .sub companion) are ignored.
func (s *Store) MarkTrashed(ctx context.Context, id, path string) error {
	if _, err := s.exec(ctx,
		`UPDATE run_inputs SET trashed = 1 WHERE run_id = ? AND path = ?`,
		id, path,
	); err != nil {
		return fmt.Errorf("mark trashed: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first, without their inputs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.started_at DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns the run whose id is, or starts with, id, including inputs.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.id = ? OR r.id LIKE ? ESCAPE '\' LIMIT 2`,
		id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var run *Run
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) == 1:
		run = matches[0]
	default:
		for _, m := range matches {
			if m.ID == id {
				run = m
			}
		}
		if run == nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
	}

	inputs, err := s.inputs(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Inputs = inputs
	return run, nil
}

func (s *Store) inputs(ctx context.Context, id string) ([]Input, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, path, language, forced, trashed FROM run_inputs WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []Input
	for rows.Next() {
		var (
			in       Input
			language sql.NullString
			forced   int
			trashed  int
		)
		if err := rows.Scan(&in.Position, &in.Path, &language, &forced, &trashed); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		in.Language = language.String
		in.Forced = forced != 0
		in.Trashed = trashed != 0
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
