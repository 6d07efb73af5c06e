/*
Package workers sizes and runs the bounded pool behind thumbnail resizing.

The default size comes from GOMAXPROCS, which Go sets from the container
CPU quota, rather than runtime.NumCPU. Configured sizes go through Clamp:

	n := workers.Clamp(cfg.ThumbnailWorkers)

Pool limits how many jobs run at once. Do blocks until a slot is free or
the context is done:

	pool := workers.NewPool(workers.Resizers())
	err := pool.Do(ctx, func() error {
	    return resize(path)
	})
*/
package workers
