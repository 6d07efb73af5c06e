package metrics

import (
	"context"
	"time"

	"photo-gallery/internal/logging"
)

// StatsProvider reports library-wide counts.
type StatsProvider interface {
	LibraryStats(ctx context.Context) (Stats, error)
}

// Stats holds the current library counts
type Stats struct {
	Images  int64
	Folders int64
	Roots   int64
	Tags    int64
}

// Collector periodically collects and updates library gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.statsProvider.LibraryStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	LibraryImagesTotal.Set(float64(stats.Images))
	LibraryFoldersTotal.Set(float64(stats.Folders))
	LibraryRootsTotal.Set(float64(stats.Roots))
	LibraryTagsTotal.Set(float64(stats.Tags))

	logging.Debug("Metrics collected: images=%d, folders=%d, roots=%d, tags=%d",
		stats.Images, stats.Folders, stats.Roots, stats.Tags)
}
