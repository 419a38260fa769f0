// Package adapters holds the per-vendor strategies for fetching and
// extracting product data. Every vendor gets its own variant behind one
// interface; the engine dispatches on URL pattern first, then brand.
package adapters

import (
	"context"
	"errors"

	"github.com/viktorsistem/katalog/models"
)

// Adapter fetches raw content for a target URL and extracts semi-structured
// product data from it.
type Adapter interface {
	// Fetch retrieves the page content. Errors surface to the engine,
	// which converts them into a failed result.
	Fetch(ctx context.Context) error

	// ScrapeRaw extracts the product fields from the fetched content.
	// Calling it before a successful Fetch is a programmer error.
	ScrapeRaw() (*models.RawProduct, error)
}

// ErrNotFetched is returned by ScrapeRaw when Fetch was never called.
var ErrNotFetched = errors.New("adapters: content not fetched, call Fetch first")
