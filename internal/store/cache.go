// Package store provides a SQLite-backed cache for values derived from files
// on disk, such as git status and transcript status.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache kinds used by the renderer.
const (
	KindGit    = "git"
	KindStatus = "status"
)

// Cache provides SQLite-backed caching keyed by (kind, key).
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Fingerprint identifies one version of a file.
type Fingerprint struct {
	MtimeNs   int64
	SizeBytes int64
}

// FingerprintOf stats path. A missing file yields the zero fingerprint.
func FingerprintOf(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return Fingerprint{}, nil
	}
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}, nil
}

// Lookup returns the cached payload for (kind, key) when its fingerprint
// equals fp and, for maxAge > 0, it is younger than maxAge.
func (c *Cache) Lookup(kind, key string, fp Fingerprint, maxAge time.Duration) ([]byte, bool, error) {
	var stored Fingerprint
	var payload []byte
	var cachedAt int64
	err := c.db.QueryRow(`SELECT mtime_ns, size_bytes, payload, cached_at_ns
		FROM entries WHERE kind = ? AND key = ?`, kind, key).
		Scan(&stored.MtimeNs, &stored.SizeBytes, &payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup %s/%s: %w", kind, key, err)
	}

	if stored != fp {
		return nil, false, nil
	}
	if maxAge > 0 && c.now().Sub(time.Unix(0, cachedAt)) >= maxAge {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put stores payload for (kind, key), replacing any previous entry.
func (c *Cache) Put(kind, key string, fp Fingerprint, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	_, err := c.db.Exec(`INSERT OR REPLACE INTO entries
		(kind, key, mtime_ns, size_bytes, payload, cached_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)`,
		kind, key, fp.MtimeNs, fp.SizeBytes, payload, c.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("cache put %s/%s: %w", kind, key, err)
	}
	return nil
}

// Delete removes the entry for (kind, key).
func (c *Cache) Delete(kind, key string) error {
	_, err := c.db.Exec("DELETE FROM entries WHERE kind = ? AND key = ?", kind, key)
	return err
}

// Prune removes entries cached more than olderThan ago and returns how many
// were removed.
func (c *Cache) Prune(olderThan time.Duration) (int64, error) {
	cutoff := c.now().Add(-olderThan).UnixNano()
	res, err := c.db.Exec("DELETE FROM entries WHERE cached_at_ns < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries.
func (c *Cache) Count() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}
