package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facebookgo/clock"

	// Register Postgres SQL driver.
	_ "github.com/lib/pq"
	// Register SQLite SQL driver.
	_ "modernc.org/sqlite"

	"github.com/ferro-labs/gnews-mcp/internal/gnews"
)

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// sqliteFile is the database file created under the configured cache
// directory.
const sqliteFile = "gnews-cache.db"

// SQLStore is the persistent cache tier, backed by SQLite (default) or
// Postgres. Entries written before a restart remain readable afterwards
// until their TTL lapses; expired rows are deleted lazily on lookup or in
// bulk via PurgeExpired.
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
	clock   clock.Clock
}

// NewSQLiteStore creates a SQLite-backed store under dir, creating the
// directory if needed.
func NewSQLiteStore(dir string) (*SQLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFile))
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	// modernc.org/sqlite serializes writes through a single connection.
	db.SetMaxOpenConns(1)

	store := &SQLStore{db: db, dialect: dialectSQLite, clock: clock.New()}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore creates a Postgres-backed store from a DSN.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres cache: %w", err)
	}
	store := &SQLStore{db: db, dialect: dialectPostgres, clock: clock.New()}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s cache: %w", s.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS cache_entries (
	fingerprint TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	expires_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires ON cache_entries(expires_at);`

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize %s cache schema: %w", s.dialect, err)
	}
	return nil
}

// Get returns the stored envelope for key and its remaining lifetime, or a
// miss if absent or expired. An expired row is deleted before reporting the
// miss.
func (s *SQLStore) Get(key string) (*gnews.Envelope, time.Duration, bool, error) {
	q := s.bind(`SELECT payload, expires_at FROM cache_entries WHERE fingerprint = ?`)

	var payload string
	var expiresAt int64
	err := s.db.QueryRow(q, key).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("read cache entry: %w", err)
	}

	now := s.clock.Now().Unix()
	if now >= expiresAt {
		del := s.bind(`DELETE FROM cache_entries WHERE fingerprint = ?`)
		if _, err := s.db.Exec(del, key); err != nil {
			return nil, 0, false, fmt.Errorf("delete expired cache entry: %w", err)
		}
		return nil, 0, false, nil
	}

	var env gnews.Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, 0, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return &env, time.Duration(expiresAt-now) * time.Second, true, nil
}

// Set stores an envelope under key with the given TTL, replacing any prior
// entry.
func (s *SQLStore) Set(key string, env *gnews.Envelope, ttl time.Duration) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	now := s.clock.Now()
	q := s.bind(`
INSERT INTO cache_entries (fingerprint, payload, created_at, expires_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
	payload = excluded.payload,
	created_at = excluded.created_at,
	expires_at = excluded.expires_at`)

	if _, err := s.db.Exec(q, key, string(payload), now.Unix(), now.Add(ttl).Unix()); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// PurgeExpired deletes all expired rows and reports how many were removed.
func (s *SQLStore) PurgeExpired() (int64, error) {
	q := s.bind(`DELETE FROM cache_entries WHERE expires_at <= ?`)
	res, err := s.db.Exec(q, s.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Len returns the number of rows currently stored, expired or not.
func (s *SQLStore) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// bind rewrites ? placeholders to $n for Postgres. SQLite queries pass
// through unchanged.
func (s *SQLStore) bind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var (
		b      strings.Builder
		argNum = 1
	)
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			fmt.Fprintf(&b, "$%d", argNum)
			argNum++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
