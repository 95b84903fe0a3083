// Package store provides the reference-table cache interface and its
// SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/family-tree/internal/refdata"
)

// Import describes one load of the reference tables into the cache.
type Import struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	ImportedAt string         `json:"imported_at"`
	Rows       map[string]int `json:"rows"`
}

// TableCache stores reference tables so runs do not have to re-read the
// CSV files.
type TableCache interface {
	// ImportTables replaces every cached table with t. source names where
	// the tables came from and is kept for reporting.
	ImportTables(ctx context.Context, t *refdata.Tables, source string) (*Import, error)

	// LoadTables rebuilds the tables from the cache.
	LoadTables(ctx context.Context) (*refdata.Tables, error)

	// Close closes the cache.
	Close() error
}
