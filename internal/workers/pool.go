package workers

import (
	"context"
	"sync/atomic"
)

// Pool bounds the number of concurrently running jobs.
type Pool struct {
	slots  chan struct{}
	active atomic.Int64
}

// NewPool creates a pool that runs at most size jobs at once.
// A size below one is treated as one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the maximum number of concurrent jobs.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Active returns the number of jobs currently running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Do runs fn on the calling goroutine once a slot is available.
// It returns ctx.Err() without running fn if the context ends first.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		<-p.slots
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
