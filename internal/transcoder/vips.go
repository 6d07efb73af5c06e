package transcoder

import (
	"fmt"
	"path/filepath"
	"sync"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitMutex sync.Mutex
	vipsAvailable bool
)

// InitVips starts libvips. Call it once at startup when VIPS_ENABLED is set.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsAvailable {
		return nil
	}

	// Configure vips logging BEFORE Startup() so LOG_LEVEL applies to libvips too
	vips.LoggingSettings(vipsLogHandler(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,                // the worker pool provides concurrency
		MaxCacheMem:      50 * 1024 * 1024, // 50MB cache
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// vipsLogHandler maps the application level onto the libvips level and
// forwards messages to our logger.
func vipsLogHandler(level logging.LogLevel) (func(string, vips.LogLevel, string), vips.LogLevel) {
	forward := func(domain string, l vips.LogLevel, msg string) {
		switch {
		case l <= vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case l == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}

	switch level {
	case logging.LevelDebug:
		return forward, vips.LogLevelInfo
	case logging.LevelInfo:
		return forward, vips.LogLevelWarning
	case logging.LevelWarn:
		return forward, vips.LogLevelError
	default:
		return forward, vips.LogLevelCritical
	}
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsAvailable {
		vips.Shutdown()
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

func vipsSupports(format mediatypes.Format) bool {
	switch format {
	case mediatypes.FormatJPEG, mediatypes.FormatPNG, mediatypes.FormatWEBP:
		return true
	default:
		return false
	}
}

// resizeWithVips uses libvips thumbnailing, which shrinks JPEGs during
// decode and resamples with Lanczos3.
func resizeWithVips(req Request) ([]byte, error) {
	logging.Debug("Loading %s with vips (target: %dx%d)", filepath.Base(req.Path), req.Width, req.Height)

	ref, err := vips.LoadImageFromFile(req.Path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, fmt.Errorf("vips auto-rotate failed: %w", err)
	}

	if err := ref.Thumbnail(req.Width, req.Height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	var out []byte
	switch req.Format {
	case mediatypes.FormatJPEG:
		out, _, err = ref.ExportJpeg(&vips.JpegExportParams{
			Quality:        Quality,
			OptimizeCoding: true,
		})
	case mediatypes.FormatPNG:
		out, _, err = ref.ExportPng(vips.NewPngExportParams())
	case mediatypes.FormatWEBP:
		params := vips.NewWebpExportParams()
		params.Quality = Quality
		out, _, err = ref.ExportWebp(params)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	return out, nil
}
