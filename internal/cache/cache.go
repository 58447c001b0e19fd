package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

const (
	appName    = "smartplaylist"
	dbFileName = "cache.db"
)

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	kind       TEXT NOT NULL,
	key        TEXT NOT NULL,
	payload    BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (kind, key)
)`

// Cache stores JSON-encoded lookup results in SQLite.
type Cache struct {
	db      *sql.DB
	ttlDays int
	now     func() time.Time
}

// DefaultPath returns the cache database path under the XDG cache directory,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.CacheFile(filepath.Join(appName, dbFileName))
}

// Open opens (or creates) the cache database at path.
func Open(path string, ttlDays int) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c, err := New(db, ttlDays)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New creates a Cache on an open database and ensures the schema exists.
func New(db *sql.DB, ttlDays int) (*Cache, error) {
	// One connection: lookups are written from many goroutines and
	// ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Cache{
		db:      db,
		ttlDays: ttlDays,
		now:     time.Now,
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// isExpired checks if a cached entry is expired.
func (c *Cache) isExpired(fetchedAt int64) bool {
	expiry := c.now().AddDate(0, 0, -c.ttlDays).Unix()
	return fetchedAt < expiry
}

// Get decodes the cached value for (kind, key) into dst.
// It reports false when there is no entry or the entry is expired.
func (c *Cache) Get(kind, key string, dst any) (bool, error) {
	var payload []byte
	var fetchedAt int64
	err := c.db.QueryRow(`
		SELECT payload, fetched_at
		FROM lookups
		WHERE kind = ? AND key = ?
	`, kind, key).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.isExpired(fetchedAt) {
		return false, nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return true, nil
}

// Set stores value for (kind, key), replacing any previous entry.
func (c *Cache) Set(kind, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	_, err = c.db.Exec(`
		INSERT INTO lookups (kind, key, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, kind, key, payload, c.now().Unix())
	return err
}

// Purge removes expired entries and returns how many were deleted.
func (c *Cache) Purge() (int64, error) {
	expiry := c.now().AddDate(0, 0, -c.ttlDays).Unix()
	res, err := c.db.Exec(`DELETE FROM lookups WHERE fetched_at < ?`, expiry)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
