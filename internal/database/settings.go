package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSettings is returned when a settings value is not positive.
var ErrInvalidSettings = errors.New("invalid settings")

// DefaultSettings returns the settings seeded into a new database.
func DefaultSettings() Settings {
	return Settings{
		RandomEqualFolders: 5,
		PhotoPerRandom:     50,
		FoldersPerPage:     20,
		EqualEnabled:       false,
	}
}

// Validate checks that every count is positive.
func (s Settings) Validate() error {
	switch {
	case s.RandomEqualFolders <= 0:
		return fmt.Errorf("%w: random_equal_folders must be positive", ErrInvalidSettings)
	case s.PhotoPerRandom <= 0:
		return fmt.Errorf("%w: photo_per_random must be positive", ErrInvalidSettings)
	case s.FoldersPerPage <= 0:
		return fmt.Errorf("%w: folders_per_page must be positive", ErrInvalidSettings)
	}
	return nil
}

// GetSettings returns the stored gallery settings.
func (d *Database) GetSettings(ctx context.Context) (Settings, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("settings", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s Settings
	var equal int
	err = d.db.QueryRowContext(ctx, `
		SELECT random_equal_folders, photo_per_random, folders_per_page, equal_enabled
		FROM settings WHERE id = 1
	`).Scan(&s.RandomEqualFolders, &s.PhotoPerRandom, &s.FoldersPerPage, &equal)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	s.EqualEnabled = equal != 0
	return s, nil
}

// UpdateSettings validates and stores s.
func (d *Database) UpdateSettings(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("settings", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO settings (id, random_equal_folders, photo_per_random, folders_per_page, equal_enabled)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			random_equal_folders = excluded.random_equal_folders,
			photo_per_random = excluded.photo_per_random,
			folders_per_page = excluded.folders_per_page,
			equal_enabled = excluded.equal_enabled
	`, s.RandomEqualFolders, s.PhotoPerRandom, s.FoldersPerPage, boolToInt(s.EqualEnabled))
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
