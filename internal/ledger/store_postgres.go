package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed RunStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed run store. The ledger schema
// must already be migrated.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) StartRun(document string) (Run, error) {
	if document == "" {
		return Run{}, fmt.Errorf("document is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	run := Run{Document: document, Status: RunRunning}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO fix_runs (document, status) VALUES ($1, $2)
		 RETURNING id::text, started_at`,
		document,
		string(RunRunning),
	).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) FinishRun(id string, counts Counts, status RunStatus) error {
	if status == RunRunning || status == "" {
		return fmt.Errorf("invalid final status %q", status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE fix_runs
		 SET finished_at = now(), status = $7, total = $2, patched = $3, partial = $4, unresolved = $5, stale = $6
		 WHERE id = $1::uuid`,
		id,
		counts.Total,
		counts.Patched,
		counts.Partial,
		counts.Unresolved,
		counts.Stale,
		string(status),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) GetRun(id string) (*Run, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	run, err := scanRun(s.pool.QueryRow(ctx, selectRuns+` WHERE id = $1::uuid`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, selectRuns+` ORDER BY started_at DESC LIMIT $1`, limit)
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
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const selectRuns = `SELECT id::text, document, status, started_at, finished_at,
	total, patched, partial, unresolved, stale
	FROM fix_runs`

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Document,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Counts.Total,
		&run.Counts.Patched,
		&run.Counts.Partial,
		&run.Counts.Unresolved,
		&run.Counts.Stale,
	)
	return run, err
}
