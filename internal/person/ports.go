package person

import (
	"context"
)

//go:generate mockgen -destination=mock_repository.go -package=person marvelous/internal/person Repository

// Repository defines the contract for person storage. People carry their
// comics in association order.
type Repository interface {
	FindAll(ctx context.Context) ([]Person, error)
	FindByID(ctx context.Context, id int64) (Person, error)
	// Save inserts when p.ID is zero and updates otherwise.
	Save(ctx context.Context, p *Person) error
	// AttachComics appends comics to the person's list, keeping existing
	// associations where they are.
	AttachComics(ctx context.Context, personID int64, comicIDs []int64) error
}
