package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"photo-gallery/internal/database"
)

// stubStore records writes in memory. With block set, every insert waits
// on it and ignores context cancellation, like a write stuck on a slow disk.
type stubStore struct {
	mu       sync.Mutex
	delay    time.Duration
	block    chan struct{}
	inserted int
	last     time.Time
	lastSets int
}

func (s *stubStore) AllHashes(context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) InsertIfAbsent(ctx context.Context, img *database.Image) (int64, error) {
	if s.block != nil {
		<-s.block
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted++
	return 1, nil
}

func (s *stubStore) UpsertByHash(ctx context.Context, img *database.Image) (int64, error) {
	return s.InsertIfAbsent(ctx, img)
}

func (s *stubStore) GetLastIndexed(context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

func (s *stubStore) SetLastIndexed(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = t
	s.lastSets++
	return nil
}

func (s *stubStore) snapshot() (inserted, lastSets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserted, s.lastSets
}

func makeLibrary(t *testing.T, files int) string {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < files; i++ {
		writeJPEG(t, filepath.Join(root, "album", fmt.Sprintf("%03d.jpg", i)), uint8(i*7))
	}
	return root
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// =============================================================================
// Start / Status
// =============================================================================

func TestStartCompletesAndRecordsLastIndexed(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	idx := New(store, []string{makeLibrary(t, 3)}, 0)
	defer idx.Close()

	res := idx.Start(nil, false)
	if !res.Started || res.RunID == "" {
		t.Fatalf("Start() = %+v, want a started run with an id", res)
	}

	waitFor(t, 5*time.Second, func() bool { return !idx.IsIndexing() })

	status := idx.Status()
	if status.Running {
		t.Error("Status().Running should be false after completion")
	}
	if status.LastIndexed.IsZero() {
		t.Error("LastIndexed should be set after a completed run")
	}
	if !idx.IsReady() {
		t.Error("IsReady() should be true after a completed run")
	}

	inserted, lastSets := store.snapshot()
	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}
	if lastSets != 1 {
		t.Errorf("SetLastIndexed called %d times, want 1", lastSets)
	}
}

func TestStartIsSingleFlight(t *testing.T) {
	t.Parallel()

	store := &stubStore{block: make(chan struct{})}
	idx := New(store, []string{makeLibrary(t, 2)}, 0)

	first := idx.Start(nil, false)
	if !first.Started {
		t.Fatalf("first Start() = %+v, want started", first)
	}

	second := idx.Start(nil, true)
	if second.Started || !second.AlreadyRunning {
		t.Errorf("second Start() = %+v, want already running", second)
	}
	if second.RunID != first.RunID {
		t.Errorf("conflict reported run %q, want %q", second.RunID, first.RunID)
	}

	status := idx.Status()
	if !status.Running || status.RunID != first.RunID {
		t.Errorf("Status() = %+v, want running %s", status, first.RunID)
	}

	close(store.block)
	waitFor(t, 5*time.Second, func() bool { return !idx.IsIndexing() })
	idx.Close()

	if third := idx.Start(nil, false); !third.Started {
		t.Errorf("Start() after completion = %+v, want started", third)
	}
	idx.Close()
}

// =============================================================================
// Cancel
// =============================================================================

func TestCancelWhenIdle(t *testing.T) {
	t.Parallel()

	idx := New(&stubStore{}, nil, 0)
	defer idx.Close()

	if idx.Cancel() {
		t.Error("Cancel() should return false when nothing is running")
	}
}

func TestCancelStopsCooperatively(t *testing.T) {
	t.Parallel()

	store := &stubStore{delay: 10 * time.Millisecond}
	idx := New(store, []string{makeLibrary(t, 30)}, 0)
	idx.SetAbortDelay(2 * time.Second)
	defer idx.Close()

	idx.Start(nil, false)
	waitFor(t, 5*time.Second, func() bool { return idx.Status().FilesSeen > 0 })

	start := time.Now()
	if !idx.Cancel() {
		t.Fatal("Cancel() returned false for a running index")
	}
	if elapsed := time.Since(start); elapsed >= 2*time.Second {
		t.Errorf("cooperative cancel took %v, expected the run to stop before the abort delay", elapsed)
	}

	status := idx.Status()
	if status.Running {
		t.Error("Status().Running should be false after Cancel")
	}
	if !status.LastIndexed.IsZero() {
		t.Error("a cancelled run must not update LastIndexed")
	}

	inserted, lastSets := store.snapshot()
	if inserted >= 30 {
		t.Errorf("inserted = %d, expected the run to stop early", inserted)
	}
	if lastSets != 0 {
		t.Errorf("SetLastIndexed called %d times, want 0", lastSets)
	}
}

func TestCancelAbortsStuckRun(t *testing.T) {
	t.Parallel()

	store := &stubStore{block: make(chan struct{})}
	idx := New(store, []string{makeLibrary(t, 2)}, 0)
	idx.SetAbortDelay(20 * time.Millisecond)

	idx.Start(nil, false)
	waitFor(t, 5*time.Second, func() bool { return idx.Status().FilesSeen > 0 })

	start := time.Now()
	if !idx.Cancel() {
		t.Fatal("Cancel() returned false for a running index")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Cancel() returned after %v, before the abort delay", elapsed)
	}

	if idx.IsIndexing() {
		t.Error("indexer should report idle right after an abort")
	}

	// the stuck write is released only now
	close(store.block)
	idx.Close()

	if !idx.LastIndexTime().IsZero() {
		t.Error("an aborted run must not update LastIndexed")
	}
}

// =============================================================================
// Background loop
// =============================================================================

func TestLoadLastIndexed(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	idx := New(&stubStore{last: want}, nil, 0)
	defer idx.Close()

	if err := idx.LoadLastIndexed(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := idx.LastIndexTime(); !got.Equal(want) {
		t.Errorf("LastIndexTime() = %v, want %v", got, want)
	}
	if !idx.GetHealthStatus().Ready {
		t.Error("a loaded completion time should make the indexer ready")
	}
}

func TestPeriodicIndex(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	idx := New(store, []string{makeLibrary(t, 1)}, 20*time.Millisecond)
	idx.StartBackground(false)

	waitFor(t, 5*time.Second, func() bool {
		_, lastSets := store.snapshot()
		return lastSets >= 2
	})
	idx.Close()
}

func TestStartAfterCloseIsRejected(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	idx := New(store, []string{makeLibrary(t, 1)}, time.Hour)
	idx.Close()

	if res := idx.Start(nil, false); res.Started || res.AlreadyRunning {
		t.Errorf("Start() after Close = %+v, want zero result", res)
	}
	idx.StartBackground(true)
	if idx.IsIndexing() {
		t.Error("no run should be installed after Close")
	}
	idx.Close()
}

func TestStartRacingClose(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		store := &stubStore{delay: time.Millisecond}
		idx := New(store, []string{makeLibrary(t, 2)}, 0)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				idx.Start(nil, false)
			}()
		}
		idx.Close()
		wg.Wait()

		// A run that won the race was stopped and waited for by Close.
		if idx.IsIndexing() {
			t.Fatal("run still installed after Close returned")
		}
		if res := idx.Start(nil, false); res.Started {
			t.Fatal("Start() after Close started a run")
		}
	}
}

func TestIndexerWithDatabase(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	idx := New(db, []string{makeLibrary(t, 3)}, 0)
	defer idx.Close()

	idx.Start(nil, false)
	waitFor(t, 5*time.Second, func() bool { return !idx.IsIndexing() })

	if got := countImages(t, db); got != 3 {
		t.Errorf("stored images = %d, want 3", got)
	}

	persisted, err := db.GetLastIndexed(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if persisted.Sub(idx.LastIndexTime()).Abs() > time.Second {
		t.Errorf("persisted last_indexed %v does not match %v", persisted, idx.LastIndexTime())
	}
}
