package indexer

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"photo-gallery/internal/database"
	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
	"photo-gallery/internal/mediatypes"
	"photo-gallery/internal/metrics"
)

// DefaultMaxDepth is how far below a root the scanner looks: root/a.jpg is
// depth 1 and root/album/a.jpg depth 2.
const DefaultMaxDepth = 2

// vendor thumbnail directories (Synology) hold generated copies of every photo
const eaDirMarker = "@eadir"

// ImageStore is the part of the repository the scanner writes through.
type ImageStore interface {
	AllHashes(ctx context.Context) ([]string, error)
	InsertIfAbsent(ctx context.Context, img *database.Image) (int64, error)
	UpsertByHash(ctx context.Context, img *database.Image) (int64, error)
}

// ScanResult summarizes one root.
type ScanResult struct {
	Root string `json:"root"`
	// Seen counts image files considered after path filtering.
	Seen int64 `json:"seen"`
	// Inserted counts records written, which with force includes updates.
	Inserted int64 `json:"inserted"`
	// Skipped counts files skipped by mtime, embedded hash or an existing record.
	Skipped int64 `json:"skipped"`
	// Invalid counts files whose dimensions could not be read.
	Invalid int64    `json:"invalid"`
	Errors  int64    `json:"errors"`
	Folders []string `json:"folders"`
}

// Progress is updated as files are processed and may be read concurrently.
type Progress struct {
	Seen     atomic.Int64
	Inserted atomic.Int64
}

// Gate can hold the scan back between files, for example under memory
// pressure.
type Gate interface {
	Wait(ctx context.Context) error
}

// Scanner walks one root at a time and writes image records.
type Scanner struct {
	store      ImageStore
	maxDepth   int
	shouldStop func() bool
	progress   *Progress
	gate       Gate
}

// NewScanner creates a scanner writing to store.
func NewScanner(store ImageStore) *Scanner {
	return &Scanner{
		store:      store,
		maxDepth:   DefaultMaxDepth,
		shouldStop: func() bool { return false },
		progress:   &Progress{},
	}
}

// WithStop installs a cooperative stop check consulted before every entry.
func (s *Scanner) WithStop(stop func() bool) *Scanner {
	if stop != nil {
		s.shouldStop = stop
	}
	return s
}

// WithProgress directs live counters to p.
func (s *Scanner) WithProgress(p *Progress) *Scanner {
	if p != nil {
		s.progress = p
	}
	return s
}

// WithGate makes the scanner wait on g before processing each file.
func (s *Scanner) WithGate(g Gate) *Scanner {
	s.gate = g
	return s
}

// scanState is the per-root bookkeeping shared by the walk callback.
type scanState struct {
	root        string
	force       bool
	lastIndexed time.Time
	known       map[string]struct{}
	folders     map[string]bool
	result      *ScanResult
}

// ScanRoot indexes the images under root.
//
// Without force, files modified at or before lastIndexed are skipped, and
// so are files named <name>_<hash> whose hash prefix is already stored.
// New records go through InsertIfAbsent. With force, every file is hashed
// and written with UpsertByHash.
//
// Per-file failures are logged and counted. An unreachable root yields an
// empty result and no error. The returned error is non-nil only when the
// scan was stopped, in which case it is context.Canceled or the context's
// error.
func (s *Scanner) ScanRoot(ctx context.Context, root string, force bool, lastIndexed time.Time) (ScanResult, error) {
	result := ScanResult{Root: root, Folders: []string{}}

	info, err := filesystem.StatWithRetry(root, filesystem.DefaultRetryConfig())
	if err != nil || !info.IsDir() {
		logging.Warn("Scan root %s is not accessible, skipping: %v", root, err)
		return result, nil
	}

	st := &scanState{
		root:        root,
		force:       force,
		lastIndexed: lastIndexed,
		known:       make(map[string]struct{}),
		folders:     make(map[string]bool),
		result:      &result,
	}

	if !force {
		hashes, err := s.store.AllHashes(ctx)
		if err != nil {
			logging.Warn("Could not load stored hashes, embedded hash skip disabled: %v", err)
		}
		for _, h := range hashes {
			st.known[media.HashPrefix(h)] = struct{}{}
		}
		logging.Debug("Loaded %d stored hash prefixes for %s", len(st.known), root)
	}

	// WalkDir does not descend into a root that is itself a symlink.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		logging.Warn("Scan root %s cannot be resolved, skipping: %v", root, err)
		return result, nil
	}

	start := time.Now()
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.shouldStop() {
			return context.Canceled
		}

		if walkErr != nil {
			logging.Warn("Walk error at %s: %v", path, walkErr)
			result.Errors++
			metrics.IndexerErrors.Inc()
			return nil
		}

		if path == walkRoot {
			return nil
		}

		// Records keep the configured root as their path prefix.
		if rel, err := filepath.Rel(walkRoot, path); err == nil {
			path = filepath.Join(root, rel)
		}
		return s.visit(ctx, st, path, d)
	})

	logging.Info("Scanned %s in %v: seen=%d inserted=%d skipped=%d invalid=%d errors=%d",
		root, time.Since(start).Round(time.Millisecond), result.Seen, result.Inserted,
		result.Skipped, result.Invalid, result.Errors)

	return result, err
}

func (s *Scanner) visit(ctx context.Context, st *scanState, path string, d fs.DirEntry) error {
	name := d.Name()

	if strings.HasPrefix(name, ".") || strings.Contains(strings.ToLower(path), eaDirMarker) {
		if d.IsDir() {
			return fs.SkipDir
		}
		return nil
	}

	if d.IsDir() {
		if depth(st.root, path) >= s.maxDepth {
			return fs.SkipDir
		}
		return nil
	}

	if !mediatypes.IsImage(filepath.Ext(name)) {
		return nil
	}

	if s.gate != nil {
		if err := s.gate.Wait(ctx); err != nil {
			return err
		}
	}

	st.result.Seen++
	s.progress.Seen.Add(1)
	s.processFile(ctx, st, path, d)
	return nil
}

func (s *Scanner) processFile(ctx context.Context, st *scanState, path string, d fs.DirEntry) {
	if !st.force && !st.lastIndexed.IsZero() {
		info, err := d.Info()
		if err != nil {
			s.countError(st, "Could not stat %s: %v", path, err)
			return
		}
		if !info.ModTime().After(st.lastIndexed) {
			s.countSkip(st)
			return
		}
	}

	name := d.Name()
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if !st.force {
		if prefix, ok := media.EmbeddedHash(stem); ok {
			if _, known := st.known[prefix]; known {
				logging.Debug("Skipping %s: embedded hash already indexed", path)
				s.countSkip(st)
				return
			}
		}
	}

	hash, err := media.HashFile(path)
	if err != nil {
		s.countError(st, "Could not hash %s: %v", path, err)
		return
	}

	info := media.ExtractInfo(path)
	if info.Width == 0 || info.Height == 0 {
		logging.Info("Skipping %s: image dimensions could not be read", path)
		st.result.Invalid++
		metrics.IndexerFilesTotal.WithLabelValues("invalid").Inc()
		return
	}

	folder := media.SanitizeFolderName(info.Folder)
	if !st.folders[folder] {
		st.folders[folder] = true
		st.result.Folders = append(st.result.Folders, folder)
		logging.Info("Indexing folder %s", folder)
	}

	img := &database.Image{
		Path:       path,
		Hash:       hash,
		Extension:  info.Extension,
		Filename:   info.Stem,
		FolderName: folder,
		Width:      info.Width,
		Height:     info.Height,
		Root:       st.root,
	}

	var n int64
	if st.force {
		n, err = s.store.UpsertByHash(ctx, img)
	} else {
		n, err = s.store.InsertIfAbsent(ctx, img)
	}
	if err != nil {
		s.countError(st, "Could not store %s: %v", path, err)
		return
	}

	if n == 0 {
		s.countSkip(st)
		metrics.IndexerFilesTotal.WithLabelValues("existing").Inc()
		return
	}

	st.result.Inserted++
	s.progress.Inserted.Add(1)
	st.known[media.HashPrefix(hash)] = struct{}{}
	metrics.IndexerFilesTotal.WithLabelValues("inserted").Inc()
}

func (s *Scanner) countSkip(st *scanState) {
	st.result.Skipped++
	metrics.IndexerFilesTotal.WithLabelValues("skipped").Inc()
}

func (s *Scanner) countError(st *scanState, format string, args ...any) {
	logging.Warn(format, args...)
	st.result.Errors++
	metrics.IndexerFilesTotal.WithLabelValues("error").Inc()
	metrics.IndexerErrors.Inc()
}

// depth returns how many path elements path is below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
