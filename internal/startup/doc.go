// Package startup handles configuration loading and startup/shutdown
// logging.
//
// # Configuration
//
// [ResolveConfig] reads, in order of precedence:
//   - environment variables
//   - a .env file (ENV_FILE, default ".env"), which never overrides the environment
//   - the YAML file named by CONFIG_FILE, filling only what is still unset
//
// Supported keys (YAML names in parentheses):
//
//   - IMAGES_DIRS (roots): comma separated image roots (default: /images)
//   - DATABASE_DIR (database_dir): directory for gallery.db (default: /database)
//   - PORT (port): HTTP port (default: 8080)
//   - METRICS_PORT (metrics_port): Prometheus port (default: 9090)
//   - METRICS_ENABLED (metrics_enabled): default true
//   - INDEX_INTERVAL (index_interval): periodic re-index, 0 disables (default: 0)
//   - INDEX_ON_START (index_on_start): index once at startup (default: false)
//   - CACHE_CAPACITY (cache_capacity): thumbnail cache entries (default: 10000)
//   - CACHE_TTL (cache_ttl): default cache entry lifetime (default: 96h)
//   - THUMBNAIL_WORKERS (thumbnail_workers): resize pool size (default: GOMAXPROCS, clamped to 1..16)
//   - VIPS_ENABLED (vips_enabled): use libvips when available (default: true)
//   - LOG_HEALTH_CHECKS (log_health_checks): log probe requests (default: true)
//
// LOG_LEVEL, LOG_FORMAT, MEMORY_LIMIT and MEMORY_RATIO are read directly by
// the logging and memory packages.
//
// Example file:
//
//	roots:
//	  - /photos/family
//	  - /photos/travel
//	database_dir: /var/lib/gallery
//	index_interval: 6h
//	index_on_start: true
//
// [LoadConfig] additionally prints the banner and configuration table and
// prepares the database directory.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
