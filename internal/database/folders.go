package database

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Folders returns folders with their image counts, grouped by root and
// ordered by name. Page is 1-based.
func (d *Database) Folders(ctx context.Context, q FolderQuery) ([]FolderInfo, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 25
	}

	var where []string
	var args []any
	if !isAny(q.Search) {
		where = append(where, "folder_name LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
	}
	if !isAny(q.Root) {
		where = append(where, "root = ?")
		args = append(args, q.Root)
	}

	query := "SELECT folder_name, COUNT(*), root FROM images"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY folder_name, root ORDER BY folder_name LIMIT ? OFFSET ?"
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	return d.queryFolders(ctx, query, args...)
}

// FolderByName returns one entry per root that contains the folder.
// The slice is empty when no image is stored under that name.
func (d *Database) FolderByName(ctx context.Context, name string) ([]FolderInfo, error) {
	return d.queryFolders(ctx,
		"SELECT folder_name, COUNT(*), root FROM images WHERE folder_name = ? GROUP BY folder_name, root",
		strings.ToLower(name))
}

func (d *Database) queryFolders(ctx context.Context, query string, args ...any) ([]FolderInfo, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("folders", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []FolderInfo{}
	for rows.Next() {
		var f FolderInfo
		if err = rows.Scan(&f.Name, &f.Count, &f.Root); err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	err = rows.Err()
	return folders, err
}

// Roots returns the distinct scan roots that have at least one image.
func (d *Database) Roots(ctx context.Context) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("roots", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, "SELECT DISTINCT root FROM images ORDER BY root")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roots := []string{}
	for rows.Next() {
		var r string
		if err = rows.Scan(&r); err != nil {
			return nil, err
		}
		roots = append(roots, r)
	}
	err = rows.Err()
	return roots, err
}

// RootsWithCounts returns every root with its image and distinct folder counts.
func (d *Database) RootsWithCounts(ctx context.Context) ([]RootInfo, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("roots", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, `
		SELECT root, COUNT(*), COUNT(DISTINCT folder_name)
		FROM images GROUP BY root ORDER BY root
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roots := []RootInfo{}
	for rows.Next() {
		var r RootInfo
		if err = rows.Scan(&r.Root, &r.ImageCount, &r.FolderCount); err != nil {
			return nil, err
		}
		roots = append(roots, r)
	}
	err = rows.Err()
	return roots, err
}
