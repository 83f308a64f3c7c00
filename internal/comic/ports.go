package comic

import (
	"context"
)

// Repository defines the contract for comic storage.
type Repository interface {
	// Save upserts by ID. rawJSON is the remote payload the comic came from.
	Save(ctx context.Context, c *Comic, rawJSON []byte) error
	FindByID(ctx context.Context, id int64) (Comic, error)
}
