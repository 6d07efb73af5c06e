package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"photo-gallery/internal/metrics"
)

const lastIndexedKey = "last_indexed"

// GetMetadata retrieves a metadata value by key.
// Returns ErrNotFound if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("metadata", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return "", err
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("metadata", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastIndexed returns the completion time of the last successful scan.
// Returns zero time if no scan has completed.
func (d *Database) GetLastIndexed(ctx context.Context) (time.Time, error) {
	value, err := d.GetMetadata(ctx, lastIndexedKey)
	if errors.Is(err, ErrNotFound) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q: %w", lastIndexedKey, value, err)
	}
	return timestamp, nil
}

// SetLastIndexed stores the completion time of a successful scan.
func (d *Database) SetLastIndexed(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		return d.SetMetadata(ctx, lastIndexedKey, "")
	}
	return d.SetMetadata(ctx, lastIndexedKey, t.UTC().Format(time.RFC3339))
}

// LibraryStats reports library-wide counts for the metrics collector and
// the stats endpoint.
func (d *Database) LibraryStats(ctx context.Context) (metrics.Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var stats metrics.Stats
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT folder_name), COUNT(DISTINCT root) FROM images
	`).Scan(&stats.Images, &stats.Folders, &stats.Roots)
	if err != nil {
		return metrics.Stats{}, err
	}

	var tags []string
	tags, err = d.allTagsLocked(ctx, "")
	if err != nil {
		return metrics.Stats{}, err
	}
	stats.Tags = int64(len(tags))

	return stats, nil
}
