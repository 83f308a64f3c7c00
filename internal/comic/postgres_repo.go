package comic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marvelous/internal/store"

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

func (r *PostgresRepo) Save(ctx context.Context, c *Comic, rawJSON []byte) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const comicSQL = `
		INSERT INTO comics (id, title, price, authors, description, isbn, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			authors = EXCLUDED.authors,
			description = EXCLUDED.description,
			isbn = EXCLUDED.isbn,
			updated_at = now()
		RETURNING updated_at`

	err = tx.QueryRow(ctx, comicSQL, c.ID, c.Title, c.Price, c.Authors, c.Description, c.ISBN).Scan(&c.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, c.ISBN)
		}
		return fmt.Errorf("upsert comic: %w", err)
	}

	if rawJSON != nil {
		const sourceSQL = `
			INSERT INTO comic_sources (comic_id, raw_json, fetched_at)
			VALUES ($1, $2, now())
			ON CONFLICT (comic_id) DO UPDATE SET
				raw_json = EXCLUDED.raw_json,
				fetched_at = now()`

		if _, err := tx.Exec(ctx, sourceSQL, c.ID, rawJSON); err != nil {
			return fmt.Errorf("upsert comic source: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Comic, error) {
	const query = `
		SELECT id, title, price, authors, description, isbn, updated_at
		FROM comics
		WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var c Comic
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Price, &c.Authors, &c.Description, &c.ISBN, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comic{}, ErrNotFound
		}
		return Comic{}, err
	}
	return c, nil
}
