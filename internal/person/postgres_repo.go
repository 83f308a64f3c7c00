package person

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marvelous/internal/comic"
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

func (r *PostgresRepo) FindAll(ctx context.Context) ([]Person, error) {
	const query = `
		SELECT id, cpf, name, email, birthday
		FROM people
		ORDER BY id`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Person
	index := make(map[int64]int)
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.CPF, &p.Name, &p.Email, &p.Birthday.Time); err != nil {
			return nil, err
		}
		p.Comics = []comic.Comic{}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	const comicsSQL = `
		SELECT pc.person_id, c.id, c.title, c.price, c.authors, c.description, c.isbn, c.updated_at
		FROM person_comics pc
		JOIN comics c ON c.id = pc.comic_id
		ORDER BY pc.person_id, pc.position`

	comicRows, err := r.db.Query(ctx, comicsSQL)
	if err != nil {
		return nil, err
	}
	defer comicRows.Close()

	for comicRows.Next() {
		var personID int64
		var c comic.Comic
		if err := comicRows.Scan(&personID, &c.ID, &c.Title, &c.Price, &c.Authors, &c.Description, &c.ISBN, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[personID]; ok {
			out[i].Comics = append(out[i].Comics, c)
		}
	}
	return out, comicRows.Err()
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Person, error) {
	const query = `
		SELECT id, cpf, name, email, birthday
		FROM people
		WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var p Person
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.CPF, &p.Name, &p.Email, &p.Birthday.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Person{}, ErrNotFound
		}
		return Person{}, err
	}

	const comicsSQL = `
		SELECT c.id, c.title, c.price, c.authors, c.description, c.isbn, c.updated_at
		FROM person_comics pc
		JOIN comics c ON c.id = pc.comic_id
		WHERE pc.person_id = $1
		ORDER BY pc.position`

	rows, err := r.db.Query(ctx, comicsSQL, id)
	if err != nil {
		return Person{}, err
	}
	defer rows.Close()

	p.Comics = []comic.Comic{}
	for rows.Next() {
		var c comic.Comic
		if err := rows.Scan(&c.ID, &c.Title, &c.Price, &c.Authors, &c.Description, &c.ISBN, &c.UpdatedAt); err != nil {
			return Person{}, err
		}
		p.Comics = append(p.Comics, c)
	}
	return p, rows.Err()
}

func (r *PostgresRepo) Save(ctx context.Context, p *Person) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var err error
	if p.ID == 0 {
		const insertSQL = `
			INSERT INTO people (cpf, name, email, birthday)
			VALUES ($1, $2, $3, $4)
			RETURNING id`
		err = r.db.QueryRow(ctx, insertSQL, p.CPF, p.Name, p.Email, p.Birthday.Time).Scan(&p.ID)
	} else {
		const upsertSQL = `
			INSERT INTO people (id, cpf, name, email, birthday)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				cpf = EXCLUDED.cpf,
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				birthday = EXCLUDED.birthday`
		_, err = r.db.Exec(ctx, upsertSQL, p.ID, p.CPF, p.Name, p.Email, p.Birthday.Time)
	}
	if err != nil {
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w (%s)", ErrAlreadyExists, store.ConstraintName(err))
		}
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

func (r *PostgresRepo) AttachComics(ctx context.Context, personID int64, comicIDs []int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the person row so concurrent attaches get distinct positions.
	var exists int
	err = tx.QueryRow(ctx, "SELECT 1 FROM people WHERE id = $1 FOR UPDATE", personID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	var next int
	err = tx.QueryRow(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM person_comics WHERE person_id = $1", personID).Scan(&next)
	if err != nil {
		return err
	}

	const linkSQL = `
		INSERT INTO person_comics (person_id, comic_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (person_id, comic_id) DO NOTHING`

	for _, comicID := range comicIDs {
		tag, err := tx.Exec(ctx, linkSQL, personID, comicID, next)
		if err != nil {
			return fmt.Errorf("attach comic %d: %w", comicID, err)
		}
		if tag.RowsAffected() > 0 {
			next++
		}
	}

	return tx.Commit(ctx)
}
