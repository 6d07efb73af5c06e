package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// NormalizeTags trims each tag, drops empties and removes duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func encodeTags(tags []string) (any, error) {
	tags = NormalizeTags(tags)
	if len(tags) == 0 {
		return nil, nil
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// hasTag matches rows whose tag list contains the bound tag exactly.
const hasTag = "EXISTS (SELECT 1 FROM json_each(images.tags) WHERE json_each.value = ?)"

// SetTags replaces the tags of the image with the given hash.
// Returns the number of rows updated (0 when the hash is unknown).
func (d *Database) SetTags(ctx context.Context, hash string, tags []string) (int64, error) {
	return d.setTags(ctx, "hash = ?", hash, tags)
}

// SetFolderTags replaces the tags of every image in folder.
func (d *Database) SetFolderTags(ctx context.Context, folder string, tags []string) (int64, error) {
	return d.setTags(ctx, "folder_name = ?", strings.ToLower(folder), tags)
}

func (d *Database) setTags(ctx context.Context, where string, key string, tags []string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_tags", start, err) }()

	var encoded any
	encoded, err = encodeTags(tags)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var result sql.Result
	result, err = d.db.ExecContext(ctx, "UPDATE images SET tags = ? WHERE "+where, encoded, key)
	if err != nil {
		return 0, fmt.Errorf("failed to update tags: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	recordRows("set_tags", rows)
	return rows, nil
}

// AllTags returns the sorted set of distinct tags, optionally limited to
// one folder ("" or "*" for all).
func (d *Database) AllTags(ctx context.Context, folder string) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("tags", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var tags []string
	tags, err = d.allTagsLocked(ctx, folder)
	return tags, err
}

func (d *Database) allTagsLocked(ctx context.Context, folder string) ([]string, error) {
	query := "SELECT tags FROM images WHERE tags IS NOT NULL AND tags != '[]'"
	var args []any
	if !isAny(folder) {
		query += " AND folder_name = ?"
		args = append(args, strings.ToLower(folder))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unique := make(map[string]bool)
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, t := range decodeTags(raw) {
			unique[t] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(unique))
	for t := range unique {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}
