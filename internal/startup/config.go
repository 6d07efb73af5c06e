package startup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"photo-gallery/internal/cache"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/workers"
)

// DatabaseFile is the SQLite file name inside DatabaseDir.
const DatabaseFile = "gallery.db"

// Config holds all application configuration
type Config struct {
	ImageDirs        []string
	DatabaseDir      string
	Port             string
	MetricsPort      string
	MetricsEnabled   bool
	IndexInterval    time.Duration
	IndexOnStart     bool
	CacheCapacity    int
	CacheTTL         time.Duration
	ThumbnailWorkers int
	VipsEnabled      bool
	LogHealthChecks  bool

	// ConfigFile is the YAML file values were read from, if any.
	ConfigFile string

	// Derived paths
	DatabasePath string
}

// fileConfig is the optional YAML configuration file. Pointer fields
// distinguish "not set" from the zero value.
type fileConfig struct {
	Roots            []string `yaml:"roots"`
	DatabaseDir      string   `yaml:"database_dir"`
	Port             string   `yaml:"port"`
	MetricsPort      string   `yaml:"metrics_port"`
	MetricsEnabled   *bool    `yaml:"metrics_enabled"`
	IndexInterval    string   `yaml:"index_interval"`
	IndexOnStart     *bool    `yaml:"index_on_start"`
	CacheCapacity    *int     `yaml:"cache_capacity"`
	CacheTTL         string   `yaml:"cache_ttl"`
	ThumbnailWorkers *int     `yaml:"thumbnail_workers"`
	VipsEnabled      *bool    `yaml:"vips_enabled"`
	LogHealthChecks  *bool    `yaml:"log_health_checks"`
}

// values flattens the file into the environment variable names it backs.
func (f *fileConfig) values() map[string]string {
	v := make(map[string]string)
	if f == nil {
		return v
	}

	setString := func(key, value string) {
		if value != "" {
			v[key] = value
		}
	}
	setBool := func(key string, value *bool) {
		if value != nil {
			v[key] = strconv.FormatBool(*value)
		}
	}
	setInt := func(key string, value *int) {
		if value != nil {
			v[key] = strconv.Itoa(*value)
		}
	}

	setString("IMAGES_DIRS", strings.Join(f.Roots, ","))
	setString("DATABASE_DIR", f.DatabaseDir)
	setString("PORT", f.Port)
	setString("METRICS_PORT", f.MetricsPort)
	setBool("METRICS_ENABLED", f.MetricsEnabled)
	setString("INDEX_INTERVAL", f.IndexInterval)
	setBool("INDEX_ON_START", f.IndexOnStart)
	setInt("CACHE_CAPACITY", f.CacheCapacity)
	setString("CACHE_TTL", f.CacheTTL)
	setInt("THUMBNAIL_WORKERS", f.ThumbnailWorkers)
	setBool("VIPS_ENABLED", f.VipsEnabled)
	setBool("LOG_HEALTH_CHECKS", f.LogHealthChecks)
	return v
}

func loadFileConfig(path string) (*fileConfig, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// loadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logging.Warn("Failed to load %s: %v", path, err)
		return
	}
	logging.Debug("Loaded environment from %s", path)
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

func (s source) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := s.file[key]; ok {
		return value
	}
	return defaultValue
}

func (s source) getBool(key string, defaultValue bool) bool {
	value := s.get(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func (s source) getInt(key string, defaultValue int) int {
	value := s.get(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid positive integer for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func (s source) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := s.get(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// ResolveConfig reads configuration from .env (ENV_FILE, default ".env"),
// the environment and the optional YAML file named by CONFIG_FILE, in that
// order of precedence: environment values win over the file.
func ResolveConfig() (*Config, error) {
	loadDotEnv(getEnv("ENV_FILE", ".env"))

	configFile := os.Getenv("CONFIG_FILE")
	fc, err := loadFileConfig(configFile)
	if err != nil {
		return nil, err
	}
	src := source{file: fc.values()}

	dirs := splitList(src.get("IMAGES_DIRS", "/images"))
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no image directories configured (set IMAGES_DIRS)")
	}
	for i, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve image directory %s: %w", dir, err)
		}
		dirs[i] = abs
	}

	databaseDir, err := filepath.Abs(src.get("DATABASE_DIR", "/database"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}

	return &Config{
		ImageDirs:        dirs,
		DatabaseDir:      databaseDir,
		DatabasePath:     filepath.Join(databaseDir, DatabaseFile),
		Port:             src.get("PORT", "8080"),
		MetricsPort:      src.get("METRICS_PORT", "9090"),
		MetricsEnabled:   src.getBool("METRICS_ENABLED", true),
		IndexInterval:    src.getDuration("INDEX_INTERVAL", 0),
		IndexOnStart:     src.getBool("INDEX_ON_START", false),
		CacheCapacity:    src.getInt("CACHE_CAPACITY", cache.DefaultCapacity),
		CacheTTL:         src.getDuration("CACHE_TTL", cache.DefaultTTL),
		ThumbnailWorkers: workers.Clamp(src.getInt("THUMBNAIL_WORKERS", workers.Resizers())),
		VipsEnabled:      src.getBool("VIPS_ENABLED", true),
		LogHealthChecks:  src.getBool("LOG_HEALTH_CHECKS", true),
		ConfigFile:       configFile,
	}, nil
}

// EnsureDatabaseDir creates the database directory and checks it is
// writable.
func (c *Config) EnsureDatabaseDir() error {
	if err := ensureDirectory(c.DatabaseDir, "database"); err != nil {
		return fmt.Errorf("database directory error: %w", err)
	}
	if err := testWriteAccess(c.DatabaseDir); err != nil {
		return fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
