package enrichment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	const sql = `
		INSERT INTO enrichment_runs (person_id, requested, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var id string
	err := r.db.QueryRow(ctx, sql, run.PersonID, run.Requested, run.Status, run.StartedAt).Scan(&id)
	return id, err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE enrichment_runs SET
			finished_at = $1,
			status = $2,
			fetched = $3,
			skipped = $4,
			stored = $5,
			error = $6
		WHERE id = $7`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, sql, run.FinishedAt, run.Status, run.Fetched, run.Skipped, run.Stored, run.Error, run.ID)
	return err
}

func (r *PostgresRepo) LinkComicToRun(ctx context.Context, runID string, comicID int64) error {
	const sql = `
		INSERT INTO enrichment_run_comics (run_id, comic_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, sql, runID, comicID)
	return err
}

func (r *PostgresRepo) FindRun(ctx context.Context, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, ErrRunNotFound
	}

	const sql = `
		SELECT id, person_id, requested, fetched, skipped, stored, status, error, started_at, finished_at
		FROM enrichment_runs
		WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var run Run
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&run.ID, &run.PersonID, &run.Requested, &run.Fetched, &run.Skipped,
		&run.Stored, &run.Status, &run.Error, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, err
	}
	return run, nil
}
