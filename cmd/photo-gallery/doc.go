// Package main documents the photo-gallery server, built from the module root.
//
// photo-gallery indexes one or more directories of photos into SQLite and
// serves them over HTTP with cached thumbnails, random selections, folder
// browsing and tagging.
//
// # Application Lifecycle
//
// The server follows a fixed initialization sequence:
//
//  1. Memory Configuration: sets GOMEMLIMIT from GOMEMLIMIT or MEMORY_LIMIT
//  2. Configuration Loading: .env file, optional YAML file, then environment
//  3. Metrics: registers Prometheus collectors and the filesystem observer
//  4. Database Initialization: opens SQLite and runs migrations
//  5. Component Initialization:
//     - Transcoder: libvips when enabled and available, pure Go otherwise
//     - Thumbnail Cache: in-memory TTL + LRU cache of encoded thumbnails
//     - Memory Monitor: pauses indexing while the heap is near its limit
//     - Indexer: restores last_indexed, then runs on demand or on a ticker
//  6. HTTP Server Setup: routes, request IDs, access logs, compression
//  7. Graceful Shutdown: SIGINT/SIGTERM stops servers, then the indexer
//
// # Indexing
//
// Only one index run is active at a time. A run walks each root two levels
// deep, skipping hidden entries and Synology @eaDir folders, and records
// new images by content hash. Cancelling asks the run to stop and abandons
// it if it has not stopped within 100ms.
//
// # Environment
//
//	IMAGES_DIRS         comma-separated scan roots (default: /images)
//	DATABASE_DIR        directory holding gallery.db (default: /database)
//	PORT                HTTP port (default: 8080)
//	METRICS_PORT        Prometheus port (default: 9090)
//	METRICS_ENABLED     serve /metrics (default: true)
//	INDEX_INTERVAL      periodic index interval, 0 disables (default: 0)
//	INDEX_ON_START      index once at startup (default: false)
//	CACHE_CAPACITY      thumbnail cache entries (default: 10000)
//	CACHE_TTL           default cache entry lifetime (default: 96h)
//	THUMBNAIL_WORKERS   concurrent resizes (default: CPU count, at most 16)
//	VIPS_ENABLED        use libvips when available (default: true)
//	LOG_HEALTH_CHECKS   include probe requests in access logs (default: true)
//	LOG_LEVEL           debug, info, warn or error (default: info)
//	LOG_FORMAT          "json" for JSON log lines
//	CONFIG_FILE         optional YAML file with the same settings
//
// See cmd/galleryctl for the command-line client.
package main
