package etl

import (
	"context"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
)

// Store is the legacy data source. Deploy bootstraps schema and data from
// a directory; Query runs one projection and materializes all rows.
type Store interface {
	Deploy(ctx context.Context, dir string) error
	Query(ctx context.Context, p Projection) ([]*models.Row, error)
	Close() error
}

// Loader writes the rows of one mapping to its target.
type Loader interface {
	Load(ctx context.Context, rows []*models.Row) (int, error)
}
