package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Sizing
// =============================================================================

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative", -3, 1},
		{"zero", 0, 1},
		{"one", 1, 1},
		{"typical", 8, 8},
		{"at cap", MaxResizers, MaxResizers},
		{"above cap", 128, MaxResizers},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestResizersFollowsGOMAXPROCS(t *testing.T) {
	want := Clamp(runtime.GOMAXPROCS(0))
	if got := Resizers(); got != want {
		t.Errorf("Resizers() = %d, want %d", got, want)
	}

	// An environment override is the config layer's job, not this package's.
	t.Setenv("THUMBNAIL_WORKERS", "3")
	if got := Resizers(); got != want {
		t.Errorf("Resizers() with THUMBNAIL_WORKERS set = %d, want %d", got, want)
	}
}

// =============================================================================
// Pool
// =============================================================================

func TestNewPoolClampsSize(t *testing.T) {
	t.Parallel()

	if got := NewPool(0).Size(); got != 1 {
		t.Errorf("NewPool(0).Size() = %d, want 1", got)
	}
	if got := NewPool(4).Size(); got != 4 {
		t.Errorf("NewPool(4).Size() = %d, want 4", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()

	pool := NewPool(2)
	var running, peak atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func() error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("Peak concurrency = %d, want <= 2", peak.Load())
	}
	if pool.Active() != 0 {
		t.Errorf("Active() after completion = %d, want 0", pool.Active())
	}
}

func TestPoolReturnsJobError(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	err := NewPool(1).Do(context.Background(), func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestPoolHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	pool := NewPool(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = pool.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ran := false
	err := pool.Do(ctx, func() error {
		ran = true
		return nil
	})
	close(release)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() = %v, want DeadlineExceeded", err)
	}
	if ran {
		t.Error("Job should not run when the context expires while waiting")
	}
}
