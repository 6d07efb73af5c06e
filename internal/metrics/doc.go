// Package metrics provides Prometheus instrumentation for the photo gallery.
//
// All metrics are registered with promauto at package init and prefixed
// with "gallery_". They are exposed by the handler on the metrics port.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Database Metrics
//
//   - DBQueryTotal: queries by operation and status
//   - DBQueryDuration: query duration by operation
//   - DBRowsAffected: rows written by operation
//   - DBConnectionsOpen: open connections
//
// ## Indexer Metrics
//
//   - IndexerRunsTotal: runs by outcome (completed, cancelled, aborted)
//   - IndexerStartConflicts: start requests rejected by a run in progress
//   - IndexerIsRunning: 1 while a run is active
//   - IndexerFilesTotal: files by result (inserted, existing, skipped, invalid, error)
//   - IndexerErrors: per-file and per-entry failures
//   - IndexerLastRunTimestamp, IndexerLastRunDuration: last completed run
//
// ## Thumbnail Cache Metrics
//
//   - ThumbnailCacheHits, ThumbnailCacheMisses: lookups by kind (photo, folder)
//   - ThumbnailCacheEvictions: removals by reason (expired, capacity)
//   - ThumbnailCacheEntries, ThumbnailCacheBytes: current size
//
// ## Transcoder Metrics
//
//   - TranscoderJobsTotal: jobs by format and status
//   - TranscoderJobDuration: resize duration by backend (vips, imaging)
//   - TranscoderJobsInProgress: jobs holding a worker slot
//
// ## Streaming Metrics
//
//   - StreamBytesTotal: image bytes written to clients
//   - StreamAbortsTotal: incomplete image responses by reason
//
// ## Library Metrics
//
// Refreshed periodically by [Collector] from a [StatsProvider]:
// images, folders, roots and distinct tags.
//
// ## Filesystem and Memory Metrics
//
// Retry counters for stale NFS handles are recorded through the
// filesystem package's Observer interface; main installs
// [NewFilesystemObserver] with filesystem.SetObserver.
// Memory gauges are set by the memory monitor.
package metrics
