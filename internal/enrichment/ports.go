package enrichment

import (
	"context"

	"marvelous/internal/platform/marvel"
)

// Fetcher retrieves a single comic envelope from the remote catalog.
type Fetcher interface {
	GetComic(ctx context.Context, id int64) (*marvel.Response[marvel.Comic], error)
}

// PersonAttacher links stored comics to a person.
type PersonAttacher interface {
	AttachComics(ctx context.Context, personID int64, comicIDs []int64) error
}

type RunRepository interface {
	CreateRun(ctx context.Context, run *Run) (string, error)
	UpdateRun(ctx context.Context, run *Run) error
	LinkComicToRun(ctx context.Context, runID string, comicID int64) error
	FindRun(ctx context.Context, id string) (Run, error)
}
