package store

import (
	"context"
	"errors"
	"os"
)

// Stats holds cache statistics.
type Stats struct {
	DBPath      string       `json:"db_path"`
	DBSizeBytes int64        `json:"db_size_bytes"`
	Tables      []TableStats `json:"tables"`
	Imports     int          `json:"imports"`
	LastImport  *Import      `json:"last_import,omitempty"`
}

// TableStats holds the row count of one cached table.
type TableStats struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

var statTables = []string{"rates", "first_names", "last_names", "rank_probabilities", "life_expectancy"}

// Stats returns cache statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	for _, table := range statTables {
		ts := TableStats{Table: table}
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&ts.Rows); err != nil {
			return st, err
		}
		st.Tables = append(st.Tables, ts)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM imports`).Scan(&st.Imports); err != nil {
		return st, err
	}

	last, err := s.LastImport(ctx)
	if err != nil && !errors.Is(err, ErrEmptyCache) {
		return st, err
	}
	st.LastImport = last

	return st, nil
}
