// Package memory keeps the gallery within its container memory budget.
//
// [ConfigureFromEnv] sets GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO so
// the runtime collects before the container is OOM-killed. Call it early
// in main.
//
// [Monitor] samples heap usage and pauses indexing while usage is above
// the pause ratio, resuming once it drops below the resume ratio. The
// indexer calls [Monitor.Wait] before each file:
//
//	mon := memory.NewMonitor(memory.DefaultConfig())
//	mon.Start()
//	defer mon.Stop()
//	idx.SetGate(mon)
package memory
