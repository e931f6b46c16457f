// Package store persists query match verdicts to Postgres using a
// naive ';'-split SQL migration runner and an ExecContext-based
// upsert for recording matches.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Store wraps a Postgres connection pool used as the verdict sink:
// the collaborator that persists the query core's match stream.
type Store struct {
	db *sql.DB
}

// Open establishes a connection pool against dsn (a postgres:// URL),
// verifying it with a ping before returning.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenWithDB wraps an already-open *sql.DB, letting tests inject a
// sqlmock connection.
func OpenWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// RunMigrations executes every .sql file under dir in lexicographic
// order, naively splitting each file's text on ';' — adequate for the
// small, hand-written schema this package ships with.
func (s *Store) RunMigrations(dir string) error {
	var files []string
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return fmt.Errorf("store: walk migrations dir: %w", err)
	}
	sort.Strings(files)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("store: read migration %s: %w", path, err)
		}
		for _, stmt := range strings.Split(string(b), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("store: exec migration %s: %w", path, err)
			}
		}
	}
	return nil
}

// InitSchema applies migrations from MATCHES_MIGRATIONS_PATH if set,
// falling back to ./migrations, /srv/migrations, and finally the
// schema this package embeds.
func (s *Store) InitSchema() error {
	candidates := []string{}
	if mp := os.Getenv("MATCHES_MIGRATIONS_PATH"); mp != "" {
		candidates = append(candidates, mp)
	}
	candidates = append(candidates, "./migrations", "/srv/migrations")

	var lastErr error
	for _, p := range candidates {
		if _, statErr := os.Stat(p); statErr != nil {
			lastErr = statErr
			continue
		}
		if err := s.RunMigrations(p); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if err := s.runEmbeddedMigrations(); err != nil {
		return fmt.Errorf("init schema: no usable migrations path (last error: %v); embedded fallback failed: %w", lastErr, err)
	}
	return nil
}

func (s *Store) runEmbeddedMigrations() error {
	entries, err := fs.ReadDir(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("store: read embedded migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, name := range names {
		b, err := fs.ReadFile(embeddedMigrations, filepath.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("store: read embedded migration %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(b), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("store: exec embedded migration %s: %w", name, err)
			}
		}
	}
	return nil
}

// Match is one query-expression verdict recorded against an event.
type Match struct {
	QueryID        string
	EventID        int64
	EventTimestamp time.Time
	MatchedAt      time.Time
}

// RecordMatch upserts a match row, so re-evaluating the same
// query/event pair (e.g. after a flow-table replay) is idempotent.
func (s *Store) RecordMatch(ctx context.Context, m Match) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches(query_id, event_id, event_timestamp, matched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (query_id, event_id) DO UPDATE
		SET event_timestamp = EXCLUDED.event_timestamp, matched_at = EXCLUDED.matched_at`,
		m.QueryID, m.EventID, m.EventTimestamp, m.MatchedAt,
	)
	if err != nil {
		return fmt.Errorf("store: record match: %w", err)
	}
	return nil
}

// CountMatches returns how many matches are recorded for queryID.
func (s *Store) CountMatches(ctx context.Context, queryID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM matches WHERE query_id = $1`, queryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count matches: %w", err)
	}
	return n, nil
}
