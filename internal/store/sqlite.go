package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/refdata"
)

// ErrEmptyCache is returned by LoadTables when nothing has been imported.
var ErrEmptyCache = errors.New("reference cache is empty")

// SQLiteStore implements TableCache using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

var _ TableCache = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rates (
		decade        INTEGER PRIMARY KEY,
		birth_rate    REAL NOT NULL,
		marriage_rate REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS first_names (
		decade    INTEGER NOT NULL,
		gender    TEXT NOT NULL,
		name      TEXT NOT NULL,
		frequency REAL NOT NULL,
		seq       INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_first_names_decade ON first_names(decade, gender);

	CREATE TABLE IF NOT EXISTS last_names (
		decade INTEGER NOT NULL,
		rank   INTEGER NOT NULL,
		name   TEXT NOT NULL,
		seq    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_last_names_decade ON last_names(decade);

	CREATE TABLE IF NOT EXISTS rank_probabilities (
		decade      INTEGER NOT NULL,
		rank        INTEGER NOT NULL,
		probability REAL NOT NULL,
		PRIMARY KEY (decade, rank)
	);

	CREATE TABLE IF NOT EXISTS life_expectancy (
		year       INTEGER PRIMARY KEY,
		expectancy REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS imports (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		imported_at TEXT NOT NULL,
		row_counts  TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ImportTables replaces the cached tables with t in a single transaction.
func (s *SQLiteStore) ImportTables(ctx context.Context, t *refdata.Tables, source string) (*Import, error) {
	now := time.Now().UTC()
	rows := t.Rows()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, table := range []string{"rates", "first_names", "last_names", "rank_probabilities", "life_expectancy"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, r := range rows.Rates {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO rates (decade, birth_rate, marriage_rate) VALUES (?, ?, ?)`,
			r.Decade, r.BirthRate, r.MarriageRate); err != nil {
			return nil, fmt.Errorf("insert rate: %w", err)
		}
	}
	for i, r := range rows.FirstNames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO first_names (decade, gender, name, frequency, seq) VALUES (?, ?, ?, ?, ?)`,
			r.Decade, string(r.Gender), r.Name, r.Frequency, i); err != nil {
			return nil, fmt.Errorf("insert first name: %w", err)
		}
	}
	for i, r := range rows.Surnames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO last_names (decade, rank, name, seq) VALUES (?, ?, ?, ?)`,
			r.Decade, r.Rank, r.Name, i); err != nil {
			return nil, fmt.Errorf("insert last name: %w", err)
		}
	}
	for _, r := range rows.RankProbabilities {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO rank_probabilities (decade, rank, probability) VALUES (?, ?, ?)`,
			r.Decade, r.Rank, r.Probability); err != nil {
			return nil, fmt.Errorf("insert rank probability: %w", err)
		}
	}
	for _, r := range rows.Lifespans {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO life_expectancy (year, expectancy) VALUES (?, ?)`,
			r.Year, r.Expectancy); err != nil {
			return nil, fmt.Errorf("insert life expectancy: %w", err)
		}
	}

	imp := &Import{
		ID:         s.newID(now),
		Source:     source,
		ImportedAt: now.Format(time.RFC3339),
		Rows:       t.Counts(),
	}
	countsJSON, _ := json.Marshal(imp.Rows)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, imported_at, row_counts) VALUES (?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.ImportedAt, string(countsJSON)); err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return imp, nil
}

// LoadTables reads every cached table back and validates it through
// refdata.New. Returns ErrEmptyCache if no import has been recorded.
func (s *SQLiteStore) LoadTables(ctx context.Context) (*refdata.Tables, error) {
	if _, err := s.LastImport(ctx); err != nil {
		return nil, err
	}

	var rows refdata.Rows
	var err error

	rows.Rates, err = queryRows(ctx, s.db,
		`SELECT decade, birth_rate, marriage_rate FROM rates ORDER BY decade`,
		func(sc scanner) (refdata.RateRow, error) {
			var r refdata.RateRow
			err := sc.Scan(&r.Decade, &r.BirthRate, &r.MarriageRate)
			return r, err
		})
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}

	rows.FirstNames, err = queryRows(ctx, s.db,
		`SELECT decade, gender, name, frequency FROM first_names ORDER BY seq`,
		func(sc scanner) (refdata.FirstNameRow, error) {
			var r refdata.FirstNameRow
			var gender string
			err := sc.Scan(&r.Decade, &gender, &r.Name, &r.Frequency)
			r.Gender = model.Gender(gender)
			return r, err
		})
	if err != nil {
		return nil, fmt.Errorf("load first names: %w", err)
	}

	rows.Surnames, err = queryRows(ctx, s.db,
		`SELECT decade, rank, name FROM last_names ORDER BY seq`,
		func(sc scanner) (refdata.SurnameRow, error) {
			var r refdata.SurnameRow
			err := sc.Scan(&r.Decade, &r.Rank, &r.Name)
			return r, err
		})
	if err != nil {
		return nil, fmt.Errorf("load last names: %w", err)
	}

	rows.RankProbabilities, err = queryRows(ctx, s.db,
		`SELECT decade, rank, probability FROM rank_probabilities ORDER BY decade, rank`,
		func(sc scanner) (refdata.RankProbabilityRow, error) {
			var r refdata.RankProbabilityRow
			err := sc.Scan(&r.Decade, &r.Rank, &r.Probability)
			return r, err
		})
	if err != nil {
		return nil, fmt.Errorf("load rank probabilities: %w", err)
	}

	rows.Lifespans, err = queryRows(ctx, s.db,
		`SELECT year, expectancy FROM life_expectancy ORDER BY year`,
		func(sc scanner) (refdata.LifespanRow, error) {
			var r refdata.LifespanRow
			err := sc.Scan(&r.Year, &r.Expectancy)
			return r, err
		})
	if err != nil {
		return nil, fmt.Errorf("load life expectancy: %w", err)
	}

	return refdata.New(rows)
}

// LastImport returns the most recent import record.
func (s *SQLiteStore) LastImport(ctx context.Context) (*Import, error) {
	var imp Import
	var countsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, imported_at, row_counts FROM imports ORDER BY rowid DESC LIMIT 1`).
		Scan(&imp.ID, &imp.Source, &imp.ImportedAt, &countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyCache
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(countsJSON), &imp.Rows); err != nil {
		return nil, fmt.Errorf("decode row counts of import %s: %w", imp.ID, err)
	}
	return &imp, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func queryRows[T any](ctx context.Context, db *sql.DB, query string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
