package sqlite

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

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/loamworks/gazetteer-cli/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/loamworks/gazetteer-cli/internal/core/domain"
	"github.com/loamworks/gazetteer-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed response cache.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

// NewStore creates a cache store at the specified cache directory.
// If cacheDir is empty, defaults to ~/.gazetteer/cache/responses.db.
func NewStore(cacheDir string) (*Store, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".gazetteer", "cache")
	}

	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "responses.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:    db,
		path:  dbPath,
		runID: uuid.New().String(),
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if _, err := db.Exec(
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		s.runID, time.Now().UTC(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("recording run: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunID returns the identifier recorded for this process run.
func (s *Store) RunID() string {
	return s.runID
}

// ResponseCache returns a ResponseCache interface backed by this store.
func (s *Store) ResponseCache() driven.ResponseCache {
	return &responseCache{store: s}
}

// Prune removes cached responses last touched before the cutoff and
// returns the number of rows deleted.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM responses WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning responses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned responses: %w", err)
	}
	return n, nil
}

// Count returns the number of cached responses.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting responses: %w", err)
	}
	return n, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// responseCache implements driven.ResponseCache.
type responseCache struct {
	store *Store
}

var _ driven.ResponseCache = (*responseCache)(nil)

// Get retrieves a cached response body by key.
func (c *responseCache) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := c.store.db.QueryRowContext(ctx,
		"SELECT body FROM responses WHERE key = ?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("scanning response: %w", err)
	}
	return body, nil
}

// Put stores or refreshes a response body.
func (c *responseCache) Put(ctx context.Context, key string, body []byte) error {
	now := time.Now().UTC()
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO responses (key, body, run_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, key, body, c.store.runID, now, now)

	if err != nil {
		return fmt.Errorf("saving response: %w", err)
	}
	return nil
}
