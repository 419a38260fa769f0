// Package store persists catalog records. The pipeline only needs
// upsert-by-sourceURL semantics; whether that sits on a flat file or a
// relational database is a deployment choice.
package store

import (
	"context"
	"errors"

	"github.com/viktorsistem/katalog/models"
)

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("store: product not found")

// Store is the record-store capability the pipeline consumes. The engine
// serializes writes per sourceURL, so implementations only need each single
// call to be atomic.
type Store interface {
	FindBySourceURL(ctx context.Context, sourceURL string) (*models.Product, error)
	FindByBrand(ctx context.Context, brand models.Brand) ([]models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Close() error
}
