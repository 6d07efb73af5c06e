package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBRowsAffected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_db_rows_affected_total",
			Help: "Rows affected by write operations",
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_indexer_runs_total",
			Help: "Total number of indexer runs by outcome",
		},
		[]string{"outcome"}, // "completed", "cancelled", "aborted"
	)

	IndexerStartConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_indexer_start_conflicts_total",
			Help: "Start requests rejected because a run was already in progress",
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_indexer_running",
			Help: "Whether the indexer is currently running (1 = running, 0 = idle)",
		},
	)

	IndexerFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_indexer_files_total",
			Help: "Files visited by the indexer by result",
		},
		[]string{"result"}, // "inserted", "existing", "skipped", "invalid", "error"
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_indexer_errors_total",
			Help: "Total number of per-file and per-entry indexer errors",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_indexer_last_run_timestamp",
			Help: "Unix timestamp of the last completed indexer run",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_indexer_last_run_duration_seconds",
			Help: "Duration of the last indexer run in seconds",
		},
	)
)

// Thumbnail cache metrics
var (
	ThumbnailCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
		[]string{"kind"}, // "photo", "folder"
	)

	ThumbnailCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
		[]string{"kind"},
	)

	ThumbnailCacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_cache_evictions_total",
			Help: "Entries removed from the thumbnail cache",
		},
		[]string{"reason"}, // "capacity", "expired"
	)

	ThumbnailCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_cache_entries",
			Help: "Number of entries in the thumbnail cache",
		},
	)

	ThumbnailCacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_cache_bytes",
			Help: "Total size of cached thumbnail bytes",
		},
	)
)

// Transcoder metrics
var (
	TranscoderJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_transcoder_jobs_total",
			Help: "Total number of image transcode jobs",
		},
		[]string{"format", "status"},
	)

	TranscoderJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_transcoder_job_duration_seconds",
			Help:    "Image transcode duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"}, // "imaging", "vips"
	)

	TranscoderJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_transcoder_jobs_in_progress",
			Help: "Number of transcode jobs currently holding a worker slot",
		},
	)
)

// Streaming metrics
var (
	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_stream_bytes_total",
			Help: "Total image bytes written to clients",
		},
	)

	StreamAbortsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_stream_aborts_total",
			Help: "Image responses that did not complete",
		},
		[]string{"reason"}, // "client_gone", "timeout", "error"
	)
)

// Library metrics
var (
	LibraryImagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_library_images_total",
			Help: "Total number of indexed images",
		},
	)

	LibraryFoldersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_library_folders_total",
			Help: "Total number of distinct folders",
		},
	)

	LibraryRootsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_library_roots_total",
			Help: "Total number of roots with indexed images",
		},
	)

	LibraryTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_library_tags_total",
			Help: "Total number of distinct tags",
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_attempts_total",
			Help: "Retries of filesystem operations after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_memory_paused",
			Help: "Whether indexing is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_memory_gc_pauses_total",
			Help: "Times processing was paused and a GC forced due to memory pressure",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
