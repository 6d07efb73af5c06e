package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// DefaultAbortDelay is how long Cancel waits for a run to stop on its own
// before aborting it.
const DefaultAbortDelay = 100 * time.Millisecond

// Store is everything the indexer needs from the repository.
type Store interface {
	ImageStore
	GetLastIndexed(ctx context.Context) (time.Time, error)
	SetLastIndexed(ctx context.Context, t time.Time) error
}

// StartResult reports whether a Start call launched a run.
type StartResult struct {
	Started        bool   `json:"started"`
	AlreadyRunning bool   `json:"already_running"`
	RunID          string `json:"run_id,omitempty"`
}

// Status is a snapshot of the indexer state.
type Status struct {
	Running     bool      `json:"running"`
	LastIndexed time.Time `json:"last_indexed,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	FilesSeen   int64     `json:"files_seen"`
	Inserted    int64     `json:"inserted"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready       bool      `json:"ready"`
	Indexing    bool      `json:"indexing"`
	StartTime   time.Time `json:"start_time"`
	Uptime      string    `json:"uptime"`
	LastIndexed time.Time `json:"last_indexed,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// run is one indexing job. A run is detached from the indexer the moment it
// finishes or is aborted, whichever comes first.
type run struct {
	id        string
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	stop      atomic.Bool
	aborted   atomic.Bool
	progress  Progress
	done      chan struct{}
}

// Indexer runs at most one scan over the configured roots at a time.
type Indexer struct {
	store         Store
	roots         []string
	indexInterval time.Duration
	abortDelay    time.Duration
	startTime     time.Time
	gate          Gate

	indexMu       sync.Mutex
	current       *run
	lastIndexTime time.Time
	lastError     error
	completedRuns int
	closed        bool

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates an Indexer over roots. A zero indexInterval disables
// periodic re-indexing.
func New(store Store, roots []string, indexInterval time.Duration) *Indexer {
	return &Indexer{
		store:         store,
		roots:         append([]string(nil), roots...),
		indexInterval: indexInterval,
		abortDelay:    DefaultAbortDelay,
		startTime:     time.Now(),
		stopChan:      make(chan struct{}),
	}
}

// SetAbortDelay overrides the grace period used by Cancel.
func (idx *Indexer) SetAbortDelay(d time.Duration) {
	if d > 0 {
		idx.abortDelay = d
	}
}

// SetGate installs a gate every run waits on between files.
func (idx *Indexer) SetGate(g Gate) {
	idx.gate = g
}

// Roots returns the configured scan roots.
func (idx *Indexer) Roots() []string {
	return append([]string(nil), idx.roots...)
}

// LoadLastIndexed restores the last completed run time from the store.
func (idx *Indexer) LoadLastIndexed(ctx context.Context) error {
	t, err := idx.store.GetLastIndexed(ctx)
	if err != nil {
		return err
	}

	idx.indexMu.Lock()
	idx.lastIndexTime = t
	idx.indexMu.Unlock()

	if !t.IsZero() {
		logging.Info("Last completed index: %s", t.Format(time.RFC3339))
	}
	return nil
}

// StartBackground launches the periodic re-index loop and, if indexOnStart
// is set, an initial run.
func (idx *Indexer) StartBackground(indexOnStart bool) {
	if indexOnStart {
		logging.Info("Starting initial index in background...")
		idx.Start(nil, false)
	}

	if idx.indexInterval <= 0 {
		return
	}

	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	if idx.closed {
		return
	}
	idx.wg.Add(1)
	go idx.periodicIndex()
}

func (idx *Indexer) periodicIndex() {
	defer idx.wg.Done()

	ticker := time.NewTicker(idx.indexInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic re-index triggered")
			if res := idx.Start(nil, false); res.AlreadyRunning {
				logging.Debug("Periodic re-index skipped, run %s still in progress", res.RunID)
			}
		case <-idx.stopChan:
			return
		}
	}
}

// Start launches a scan of roots, or of the configured roots when roots is
// empty. It never blocks on the scan itself. If a run is already in
// progress nothing is started and AlreadyRunning is set. After Close the
// result is zero.
func (idx *Indexer) Start(roots []string, force bool) StartResult {
	if len(roots) == 0 {
		roots = idx.roots
	}

	r, ok := idx.tryStartIndexing()
	if r == nil {
		logging.Debug("Indexer closed, not starting a run")
		return StartResult{}
	}
	if !ok {
		metrics.IndexerStartConflicts.Inc()
		return StartResult{AlreadyRunning: true, RunID: r.id}
	}

	log := logging.With("run_id", r.id)
	log.Info("Starting index of %d root(s), force=%v", len(roots), force)

	go idx.execute(r, append([]string(nil), roots...), force)

	return StartResult{Started: true, RunID: r.id}
}

// tryStartIndexing installs a new run, or returns the current one and false.
// It returns nil once the indexer is closed.
func (idx *Indexer) tryStartIndexing() (*run, bool) {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.closed {
		return nil, false
	}
	if idx.current != nil {
		return idx.current, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	idx.current = r
	idx.wg.Add(1)
	metrics.IndexerIsRunning.Set(1)
	return r, true
}

func (idx *Indexer) execute(r *run, roots []string, force bool) {
	defer idx.wg.Done()
	defer close(r.done)
	defer r.cancel()

	log := logging.With("run_id", r.id)

	idx.indexMu.Lock()
	lastIndexed := idx.lastIndexTime
	idx.indexMu.Unlock()

	scanner := NewScanner(idx.store).
		WithStop(r.stop.Load).
		WithProgress(&r.progress).
		WithGate(idx.gate)

	var (
		stopped bool
		errs    error
		total   ScanResult
	)

	for _, root := range roots {
		if r.stop.Load() || r.ctx.Err() != nil {
			stopped = true
			break
		}

		res, err := scanner.ScanRoot(r.ctx, root, force, lastIndexed)
		total.Seen += res.Seen
		total.Inserted += res.Inserted
		total.Skipped += res.Skipped
		total.Invalid += res.Invalid
		total.Errors += res.Errors

		if err != nil {
			if errors.Is(err, context.Canceled) || r.ctx.Err() != nil {
				stopped = true
				break
			}
			errs = errors.Join(errs, err)
		}
	}

	// a stop requested after the last root still counts as a stopped run
	if r.stop.Load() || r.ctx.Err() != nil {
		stopped = true
	}

	duration := time.Since(r.startedAt)
	completed := !stopped
	idx.finishIndexing(r, completed, errs)

	switch {
	case completed:
		metrics.IndexerRunsTotal.WithLabelValues("completed").Inc()
		metrics.IndexerLastRunTimestamp.Set(float64(time.Now().Unix()))
		metrics.IndexerLastRunDuration.Set(duration.Seconds())
		log.Info("Indexing complete in %v: seen=%d inserted=%d skipped=%d invalid=%d errors=%d",
			duration.Round(time.Millisecond), total.Seen, total.Inserted, total.Skipped, total.Invalid, total.Errors)
	case r.aborted.Load():
		metrics.IndexerRunsTotal.WithLabelValues("aborted").Inc()
		log.Warn("Indexing aborted after %v", duration.Round(time.Millisecond))
	default:
		metrics.IndexerRunsTotal.WithLabelValues("cancelled").Inc()
		log.Info("Indexing cancelled after %v: seen=%d inserted=%d",
			duration.Round(time.Millisecond), total.Seen, total.Inserted)
	}
}

// finishIndexing detaches r and, for a completed run, records the finish
// time. An aborted run has already been detached.
func (idx *Indexer) finishIndexing(r *run, completed bool, runErr error) {
	now := time.Now().UTC()

	idx.indexMu.Lock()
	if idx.current == r {
		idx.current = nil
		metrics.IndexerIsRunning.Set(0)
	}
	if completed {
		idx.lastIndexTime = now
		idx.completedRuns++
		idx.lastError = runErr
	}
	idx.indexMu.Unlock()

	if !completed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.store.SetLastIndexed(ctx, now); err != nil {
		logging.Error("Failed to persist last indexed time: %v", err)
	}
}

// Cancel stops the current run. The run is asked to stop between files; if
// it is still going after the abort delay it is aborted outright and the
// indexer reports idle immediately. Cancel returns false when nothing was
// running.
func (idx *Indexer) Cancel() bool {
	idx.indexMu.Lock()
	r := idx.current
	idx.indexMu.Unlock()

	if r == nil {
		return false
	}

	log := logging.With("run_id", r.id)
	log.Info("Cancellation requested")
	r.stop.Store(true)

	select {
	case <-r.done:
		return true
	case <-time.After(idx.abortDelay):
	}

	log.Warn("Run did not stop within %v, aborting", idx.abortDelay)
	r.aborted.Store(true)
	r.cancel()

	idx.indexMu.Lock()
	if idx.current == r {
		idx.current = nil
		metrics.IndexerIsRunning.Set(0)
	}
	idx.indexMu.Unlock()

	return true
}

// Status returns the current state.
func (idx *Indexer) Status() Status {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	status := Status{LastIndexed: idx.lastIndexTime}
	if r := idx.current; r != nil {
		status.Running = true
		status.RunID = r.id
		status.StartedAt = r.startedAt
		status.FilesSeen = r.progress.Seen.Load()
		status.Inserted = r.progress.Inserted.Load()
	}
	return status
}

// IsIndexing reports whether a run is in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.current != nil
}

// LastIndexTime returns when the last run completed.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastIndexTime
}

// IsReady returns true once any run has completed or a previous completion
// was loaded from the store.
func (idx *Indexer) IsReady() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.completedRuns > 0 || !idx.lastIndexTime.IsZero()
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	status := HealthStatus{
		Ready:       idx.completedRuns > 0 || !idx.lastIndexTime.IsZero(),
		Indexing:    idx.current != nil,
		StartTime:   idx.startTime,
		Uptime:      time.Since(idx.startTime).Round(time.Second).String(),
		LastIndexed: idx.lastIndexTime,
	}
	if idx.lastError != nil {
		status.LastError = idx.lastError.Error()
	}
	return status
}

// Close stops the periodic loop, aborts any run and waits for background
// goroutines to exit.
func (idx *Indexer) Close() {
	idx.stopOnce.Do(func() {
		close(idx.stopChan)
	})

	idx.indexMu.Lock()
	idx.closed = true
	r := idx.current
	idx.indexMu.Unlock()

	if r != nil {
		r.stop.Store(true)
		r.cancel()
	}

	idx.wg.Wait()
}
