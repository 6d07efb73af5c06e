package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"photo-gallery/internal/cache"
	"photo-gallery/internal/workers"
)

// clearConfigEnv blanks every key ResolveConfig reads so the host
// environment cannot leak into a test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"IMAGES_DIRS", "DATABASE_DIR", "PORT", "METRICS_PORT", "METRICS_ENABLED",
		"INDEX_INTERVAL", "INDEX_ON_START", "CACHE_CAPACITY", "CACHE_TTL",
		"THUMBNAIL_WORKERS", "VIPS_ENABLED", "LOG_HEALTH_CHECKS", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" || info.GoVersion == "" || info.OS == "" || info.Arch == "" {
		t.Errorf("GetBuildInfo() has empty fields: %+v", info)
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

// =============================================================================
// ResolveConfig
// =============================================================================

func TestResolveConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() failed: %v", err)
	}

	if len(cfg.ImageDirs) != 1 || cfg.ImageDirs[0] != "/images" {
		t.Errorf("ImageDirs = %v, want [/images]", cfg.ImageDirs)
	}
	if cfg.DatabasePath != filepath.Join("/database", DatabaseFile) {
		t.Errorf("DatabasePath = %s", cfg.DatabasePath)
	}
	if cfg.Port != "8080" || cfg.MetricsPort != "9090" {
		t.Errorf("ports = %s/%s, want 8080/9090", cfg.Port, cfg.MetricsPort)
	}
	if !cfg.MetricsEnabled || !cfg.VipsEnabled || !cfg.LogHealthChecks {
		t.Errorf("boolean defaults wrong: %+v", cfg)
	}
	if cfg.IndexInterval != 0 || cfg.IndexOnStart {
		t.Errorf("indexing should be on demand by default, got interval=%v onStart=%v", cfg.IndexInterval, cfg.IndexOnStart)
	}
	if cfg.CacheCapacity != cache.DefaultCapacity || cfg.CacheTTL != cache.DefaultTTL {
		t.Errorf("cache defaults = %d/%v", cfg.CacheCapacity, cfg.CacheTTL)
	}
	if cfg.ThumbnailWorkers < 1 {
		t.Errorf("ThumbnailWorkers = %d, want at least 1", cfg.ThumbnailWorkers)
	}
}

func TestResolveConfigFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMAGES_DIRS", "/a, /b ,,/c")
	t.Setenv("INDEX_INTERVAL", "15m")
	t.Setenv("INDEX_ON_START", "true")
	t.Setenv("CACHE_CAPACITY", "42")
	t.Setenv("THUMBNAIL_WORKERS", "-3")

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.ImageDirs) != 3 || cfg.ImageDirs[1] != "/b" {
		t.Errorf("ImageDirs = %v, want [/a /b /c]", cfg.ImageDirs)
	}
	if cfg.IndexInterval != 15*time.Minute || !cfg.IndexOnStart {
		t.Errorf("indexing = %v/%v", cfg.IndexInterval, cfg.IndexOnStart)
	}
	if cfg.CacheCapacity != 42 {
		t.Errorf("CacheCapacity = %d, want 42", cfg.CacheCapacity)
	}
	if cfg.ThumbnailWorkers < 1 {
		t.Errorf("invalid THUMBNAIL_WORKERS should fall back, got %d", cfg.ThumbnailWorkers)
	}
}

func TestResolveConfigFile(t *testing.T) {
	clearConfigEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.yaml")
	content := `roots:
  - /photos/family
  - /photos/travel
database_dir: /var/lib/gallery
port: "9000"
index_interval: 6h
index_on_start: true
cache_capacity: 500
thumbnail_workers: 3
vips_enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7000")

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() failed: %v", err)
	}

	if len(cfg.ImageDirs) != 2 || cfg.ImageDirs[0] != "/photos/family" {
		t.Errorf("ImageDirs = %v", cfg.ImageDirs)
	}
	if cfg.DatabaseDir != "/var/lib/gallery" {
		t.Errorf("DatabaseDir = %s", cfg.DatabaseDir)
	}
	if cfg.Port != "7000" {
		t.Errorf("environment should win over the file, Port = %s", cfg.Port)
	}
	if cfg.IndexInterval != 6*time.Hour || !cfg.IndexOnStart {
		t.Errorf("indexing = %v/%v", cfg.IndexInterval, cfg.IndexOnStart)
	}
	if cfg.CacheCapacity != 500 || cfg.VipsEnabled {
		t.Errorf("CacheCapacity=%d VipsEnabled=%v", cfg.CacheCapacity, cfg.VipsEnabled)
	}
	if cfg.ThumbnailWorkers != 3 {
		t.Errorf("ThumbnailWorkers = %d, want 3 from the file", cfg.ThumbnailWorkers)
	}
}

func TestResolveConfigClampsThumbnailWorkers(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("THUMBNAIL_WORKERS", "500")

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ThumbnailWorkers != workers.MaxResizers {
		t.Errorf("ThumbnailWorkers = %d, want clamped to %d", cfg.ThumbnailWorkers, workers.MaxResizers)
	}
}

func TestResolveConfigRejectsUnknownFileKeys(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rootz: [/x]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := ResolveConfig(); err == nil {
		t.Error("expected an error for an unknown config key")
	}
}

func TestResolveConfigDotEnv(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("METRICS_PORT=9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides, so an empty value is replaced only when unset
	os.Unsetenv("METRICS_PORT")
	t.Cleanup(func() { os.Unsetenv("METRICS_PORT") })

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MetricsPort != "9999" {
		t.Errorf("MetricsPort = %s, want 9999 from the .env file", cfg.MetricsPort)
	}
}

func TestEnsureDatabaseDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "db")
	cfg := &Config{DatabaseDir: dir}
	if err := cfg.EnsureDatabaseDir(); err != nil {
		t.Fatalf("EnsureDatabaseDir() failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("database directory was not created: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (&Config{DatabaseDir: file}).EnsureDatabaseDir(); err == nil {
		t.Error("expected an error when the database dir is a file")
	}
}

// =============================================================================
// Routes
// =============================================================================

func TestGetRoutes(t *testing.T) {
	t.Parallel()

	router := mux.NewRouter()
	router.HandleFunc("/api/index", nil).Methods("GET", "POST").Name("index")
	router.HandleFunc("/health", nil).Methods("GET")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatal(err)
	}
	if len(routes) != 3 {
		t.Fatalf("expected 3 method/path pairs, got %d: %+v", len(routes), routes)
	}
	if routes[0].Name != "index" {
		t.Errorf("route name = %q, want index", routes[0].Name)
	}
}

func TestGetRouteGroup(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/api/thumbnails/photo/{hash}": "api/thumbnails",
		"/api/index":                   "api/index",
		"/health":                      "health",
		"/":                            "",
	}
	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}
