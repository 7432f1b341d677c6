// Package store provides a SQLite-backed cache of parsed usage entries,
// keyed by source file, so unchanged log files are not reparsed on every
// refresh cycle.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/mattsolle/ccgauge/internal/model"
)

// Cache is a SQLite-backed entry cache.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a source file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// TrackedFiles returns file_path -> FileInfo for every cached file.
func (c *Cache) TrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFileEntries replaces the cached entries for one source file and
// records its tracking info in the same transaction.
func (c *Cache) SaveFileEntries(path string, mtimeNs, sizeBytes int64, entries []model.UsageEntry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM entries WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO entries
		(file_path, ts, input_tokens, output_tokens, cache_creation_tokens,
		 cache_read_tokens, model, cost_usd, message_id, request_id, project_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		_, err := stmt.Exec(path, e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.InputTokens, e.OutputTokens, e.CacheCreationTokens, e.CacheReadTokens,
			e.Model, e.CostUSD, e.MessageID, e.RequestID, e.ProjectPath)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			mtime_ns = excluded.mtime_ns,
			size_bytes = excluded.size_bytes,
			parsed_at = excluded.parsed_at`,
		path, mtimeNs, sizeBytes, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadFileEntries returns the cached entries for one source file.
func (c *Cache) LoadFileEntries(path string) ([]model.UsageEntry, error) {
	rows, err := c.db.Query(`SELECT ts, input_tokens, output_tokens,
		cache_creation_tokens, cache_read_tokens, model, cost_usd,
		message_id, request_id, project_path
		FROM entries WHERE file_path = ? ORDER BY rowid`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.UsageEntry
	for rows.Next() {
		var e model.UsageEntry
		var ts string
		if err := rows.Scan(&ts, &e.InputTokens, &e.OutputTokens,
			&e.CacheCreationTokens, &e.CacheReadTokens, &e.Model, &e.CostUSD,
			&e.MessageID, &e.RequestID, &e.ProjectPath); err != nil {
			return nil, err
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue // unreadable row, treat as absent
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune drops tracking and entries for files no longer present on disk.
func (c *Cache) Prune(keep map[string]struct{}) error {
	tracked, err := c.TrackedFiles()
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for path := range tracked {
		if _, ok := keep[path]; ok {
			continue
		}
		if _, err := tx.Exec("DELETE FROM entries WHERE file_path = ?", path); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
			return err
		}
	}

	return tx.Commit()
}
