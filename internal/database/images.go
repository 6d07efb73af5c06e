package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"photo-gallery/internal/logging"
)

const imageColumns = "id, path, hash, extension, filename, folder_name, width, height, tags, root"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(s rowScanner) (Image, error) {
	var img Image
	var tags sql.NullString
	if err := s.Scan(&img.ID, &img.Path, &img.Hash, &img.Extension, &img.Filename,
		&img.FolderName, &img.Width, &img.Height, &tags, &img.Root); err != nil {
		return Image{}, err
	}
	img.Tags = decodeTags(tags)
	return img, nil
}

func scanImages(rows *sql.Rows) ([]Image, error) {
	images := []Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func decodeTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		logging.Debug("Ignoring malformed tags column %q: %v", raw.String, err)
		return []string{}
	}
	return tags
}

// InsertIfAbsent inserts img unless a record with the same hash exists.
// Returns the number of rows inserted (0 for a duplicate).
// Filename and folder name are stored lowercased; tags are left NULL.
func (d *Database) InsertIfAbsent(ctx context.Context, img *Image) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_image", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var result sql.Result
	result, err = d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO images (path, hash, extension, filename, folder_name, width, height, tags, root)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)
	`, img.Path, img.Hash, img.Extension, strings.ToLower(img.Filename),
		strings.ToLower(img.FolderName), img.Width, img.Height, img.Root)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image %s: %w", img.Path, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	recordRows("insert_image", rows)
	return rows, nil
}

// UpsertByHash inserts img, or overwrites path, metadata and root of the
// record with the same hash. Existing tags are preserved.
func (d *Database) UpsertByHash(ctx context.Context, img *Image) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_image", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var result sql.Result
	result, err = d.db.ExecContext(ctx, `
		INSERT INTO images (path, hash, extension, filename, folder_name, width, height, tags, root)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)
		ON CONFLICT(hash) DO UPDATE SET
			path = excluded.path,
			extension = excluded.extension,
			filename = excluded.filename,
			folder_name = excluded.folder_name,
			width = excluded.width,
			height = excluded.height,
			root = excluded.root
	`, img.Path, img.Hash, img.Extension, strings.ToLower(img.Filename),
		strings.ToLower(img.FolderName), img.Width, img.Height, img.Root)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert image %s: %w", img.Path, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	recordRows("upsert_image", rows)
	return rows, nil
}

// AllHashes returns every stored content hash.
func (d *Database) AllHashes(ctx context.Context) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("all_hashes", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	// A full-library read can exceed defaultTimeout on large NAS libraries.
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, "SELECT hash FROM images")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := []string{}
	for rows.Next() {
		var h string
		if err = rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	err = rows.Err()
	return hashes, err
}

// GetByHash returns the image with the given hash, or ErrNotFound.
func (d *Database) GetByHash(ctx context.Context, hash string) (*Image, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_by_hash", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var img Image
	img, err = scanImage(d.db.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE hash = ?", hash))
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// GetByPath returns all images stored under path. More than one row is
// possible when identical content was seen at the same path under
// different hashes over time.
func (d *Database) GetByPath(ctx context.Context, path string) ([]Image, error) {
	return d.queryImages(ctx, "get_by_path",
		"SELECT "+imageColumns+" FROM images WHERE path = ?", path)
}

// Random returns up to f.Size images in random order matching the filter.
func (d *Database) Random(ctx context.Context, f RandomFilter) ([]Image, error) {
	var where []string
	var args []any

	if !isAny(f.Tag) {
		where = append(where, hasTag)
		args = append(args, f.Tag)
	}
	if !isAny(f.Folder) {
		where = append(where, "folder_name = ?")
		args = append(args, strings.ToLower(f.Folder))
	}
	if !isAny(f.Root) {
		where = append(where, "root = ?")
		args = append(args, f.Root)
	}
	if !isAny(f.Extension) {
		where = append(where, "extension = ?")
		args = append(args, strings.ToLower(f.Extension))
	}

	query := "SELECT " + imageColumns + " FROM images"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY RANDOM() LIMIT ?"
	args = append(args, f.Size)

	return d.queryImages(ctx, "random", query, args...)
}

// RandomEqual picks up to folders random folders in root and returns an
// equal share of size random images from each, deduplicated by hash.
func (d *Database) RandomEqual(ctx context.Context, root string, size, folders int) ([]Image, error) {
	if folders < 1 {
		folders = 1
	}
	perFolder := size / folders
	if perFolder < 1 {
		perFolder = 1
	}

	names, err := d.randomFolders(ctx, root, folders)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	images := []Image{}
	for _, name := range names {
		batch, err := d.queryImages(ctx, "random",
			"SELECT "+imageColumns+" FROM images WHERE folder_name = ? ORDER BY RANDOM() LIMIT ?",
			name, perFolder)
		if err != nil {
			logging.Warn("Random selection from folder %s failed: %v", name, err)
			continue
		}
		for _, img := range batch {
			if seen[img.Hash] {
				continue
			}
			seen[img.Hash] = true
			images = append(images, img)
		}
	}
	return images, nil
}

func (d *Database) randomFolders(ctx context.Context, root string, limit int) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("folders", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT folder_name FROM (SELECT DISTINCT folder_name FROM images"
	var args []any
	if !isAny(root) {
		query += " WHERE root = ?"
		args = append(args, root)
	}
	query += ") ORDER BY RANDOM() LIMIT ?"
	args = append(args, limit)

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	err = rows.Err()
	return names, err
}

// Paged returns one page of images in folder ("*" for all folders) ordered
// by filename, along with the total number of matching images.
// page is 1-based.
func (d *Database) Paged(ctx context.Context, folder string, page, perPage int) ([]Image, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	// Past the largest addressable offset every page is empty.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/perPage {
		offset = (page - 1) * perPage
	}

	var total int64
	var images []Image
	var err error
	if isAny(folder) {
		if total, err = d.CountAll(ctx); err != nil {
			return nil, 0, err
		}
		images, err = d.queryImages(ctx, "paged",
			"SELECT "+imageColumns+" FROM images ORDER BY filename, id LIMIT ? OFFSET ?",
			perPage, offset)
	} else {
		if total, err = d.CountByFolder(ctx, folder); err != nil {
			return nil, 0, err
		}
		images, err = d.queryImages(ctx, "paged",
			"SELECT "+imageColumns+" FROM images WHERE folder_name = ? ORDER BY filename, id LIMIT ? OFFSET ?",
			strings.ToLower(folder), perPage, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

// ByFolder returns every image in folder.
func (d *Database) ByFolder(ctx context.Context, folder string) ([]Image, error) {
	return d.queryImages(ctx, "by_folder",
		"SELECT "+imageColumns+" FROM images WHERE folder_name = ? ORDER BY filename, id",
		strings.ToLower(folder))
}

// ByTag returns every image whose tag list contains tag.
func (d *Database) ByTag(ctx context.Context, tag string) ([]Image, error) {
	return d.queryImages(ctx, "by_tag",
		"SELECT "+imageColumns+" FROM images WHERE "+hasTag+" ORDER BY folder_name, filename",
		tag)
}

// CountAll returns the number of stored images.
func (d *Database) CountAll(ctx context.Context) (int64, error) {
	return d.count(ctx, "count", "SELECT COUNT(*) FROM images")
}

// CountByFolder returns the number of images in folder.
func (d *Database) CountByFolder(ctx context.Context, folder string) (int64, error) {
	return d.count(ctx, "count", "SELECT COUNT(*) FROM images WHERE folder_name = ?", strings.ToLower(folder))
}

// DeleteFolder removes every image record in the named folder and returns
// how many were deleted. Files on disk are not touched.
func (d *Database) DeleteFolder(ctx context.Context, name string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_folder", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var result sql.Result
	result, err = d.db.ExecContext(ctx, "DELETE FROM images WHERE folder_name = ?", strings.ToLower(name))
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder %s: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	recordRows("delete_folder", rows)
	return rows, nil
}

func (d *Database) queryImages(ctx context.Context, operation, query string, args ...any) ([]Image, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

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

	var images []Image
	images, err = scanImages(rows)
	return images, err
}

func (d *Database) count(ctx context.Context, operation, query string, args ...any) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
