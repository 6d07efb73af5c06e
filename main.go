package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"photo-gallery/internal/cache"
	"photo-gallery/internal/database"
	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/handlers"
	"photo-gallery/internal/indexer"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
	"photo-gallery/internal/memory"
	"photo-gallery/internal/metrics"
	"photo-gallery/internal/middleware"
	"photo-gallery/internal/startup"
	"photo-gallery/internal/transcoder"
)

const (
	shutdownTimeout = 30 * time.Second
	statsInterval   = time.Minute
)

func main() {
	startTime := time.Now()

	// Memory limit first, before anything allocates
	memResult := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult)

	// Metrics
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	// Database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	collector := metrics.NewCollector(db, statsInterval)
	collector.Start()

	// Transcoder
	if config.VipsEnabled {
		if err := transcoder.InitVips(); err != nil {
			logging.Warn("libvips unavailable, using pure Go resizing: %v", err)
		}
	}
	trans := transcoder.New(config.ThumbnailWorkers, transcoder.IsVipsAvailable())
	startup.LogTranscoderInit(transcoder.IsVipsAvailable(), trans.PoolSize())

	// Thumbnail cache
	thumbCache := cache.New(config.CacheCapacity, config.CacheTTL)
	startup.LogCacheInit(config.CacheCapacity, config.CacheTTL)
	thumbs := media.NewThumbnailService(db, trans, thumbCache)

	// Indexer, held back by the memory monitor under pressure
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	idx := indexer.New(db, config.ImageDirs, config.IndexInterval)
	idx.SetGate(monitor)
	if err := idx.LoadLastIndexed(context.Background()); err != nil {
		logging.Warn("Could not load last index time: %v", err)
	}
	startup.LogIndexerInit(config.ImageDirs, config.IndexInterval, config.IndexOnStart)
	idx.StartBackground(config.IndexOnStart)

	// Router
	h := handlers.New(db, idx, thumbs, thumbCache)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.RequestID(
		middleware.Logger(loggingConfig)(
			middleware.Compression(middleware.DefaultCompressionConfig())(router),
		),
	)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort, h)
	}

	shutdownDone := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, idx, monitor, collector)
		close(shutdownDone)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(r)
	return r
}

func startMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, idx *indexer.Indexer, monitor *memory.Monitor, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	idx.Cancel()
	idx.Close()
	startup.LogShutdownStepComplete("Indexer stopped")

	monitor.Stop()
	collector.Stop()
	startup.LogShutdownStepComplete("Monitors stopped")

	transcoder.ShutdownVips()
	startup.LogShutdownStepComplete("Transcoder released")

	startup.LogShutdownComplete()
}
