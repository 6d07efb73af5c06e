package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"
	"photo-gallery/internal/metrics"
	"photo-gallery/internal/workers"

	"github.com/disintegration/imaging"
)

var (
	// ErrNotFound means the source file does not exist on disk.
	ErrNotFound = errors.New("source image not found")
	// ErrUnsupportedFormat means the source extension has no encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrDecode means the source could not be decoded as an image.
	ErrDecode = errors.New("failed to decode image")
)

// Request describes one resize. SourceWidth and SourceHeight are the stored
// dimensions of the original and decide whether any work is needed.
type Request struct {
	Path         string
	Format       mediatypes.Format
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
}

// NeedsResize reports whether the request shrinks the source. Requests
// that would upscale, or that leave a dimension unset, are served with the
// original bytes.
func (r Request) NeedsResize() bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return r.Width < r.SourceWidth || r.Height < r.SourceHeight
}

// Transcoder decodes, resizes and re-encodes images on a bounded pool.
type Transcoder struct {
	pool    *workers.Pool
	useVips bool
}

// New creates a Transcoder that runs at most poolSize resizes at once.
// When useVips is true and libvips has been initialized with InitVips,
// resizes go through libvips first.
func New(poolSize int, useVips bool) *Transcoder {
	t := &Transcoder{
		pool:    workers.NewPool(poolSize),
		useVips: useVips,
	}
	logging.Debug("Transcoder: pool size %d, vips requested: %v", t.pool.Size(), useVips)
	return t
}

// PoolSize returns the maximum number of concurrent resizes.
func (t *Transcoder) PoolSize() int {
	return t.pool.Size()
}

// Resize returns req.Path fit within req.Width x req.Height, encoded in
// req.Format. If no downscale is needed the original bytes are returned
// unchanged.
func (t *Transcoder) Resize(ctx context.Context, req Request) ([]byte, error) {
	format := req.Format.String()

	if _, err := filesystem.StatWithRetry(req.Path, filesystem.DefaultRetryConfig()); err != nil {
		metrics.TranscoderJobsTotal.WithLabelValues(format, "error").Inc()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", req.Path, err)
	}

	if !req.NeedsResize() {
		data, err := filesystem.ReadFileWithRetry(req.Path, filesystem.DefaultRetryConfig())
		if err != nil {
			metrics.TranscoderJobsTotal.WithLabelValues(format, "error").Inc()
			return nil, fmt.Errorf("failed to read %s: %w", req.Path, err)
		}
		metrics.TranscoderJobsTotal.WithLabelValues(format, "original").Inc()
		return data, nil
	}

	if !req.Format.Supported() {
		metrics.TranscoderJobsTotal.WithLabelValues(format, "error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(req.Path))
	}

	var out []byte
	err := t.pool.Do(ctx, func() error {
		metrics.TranscoderJobsInProgress.Inc()
		defer metrics.TranscoderJobsInProgress.Dec()

		var err error
		out, err = t.resize(req)
		return err
	})
	if err != nil {
		metrics.TranscoderJobsTotal.WithLabelValues(format, "error").Inc()
		return nil, err
	}

	metrics.TranscoderJobsTotal.WithLabelValues(format, "success").Inc()
	return out, nil
}

func (t *Transcoder) resize(req Request) ([]byte, error) {
	if t.useVips && IsVipsAvailable() && vipsSupports(req.Format) {
		start := time.Now()
		data, err := resizeWithVips(req)
		if err == nil {
			metrics.TranscoderJobDuration.WithLabelValues("vips").Observe(time.Since(start).Seconds())
			return data, nil
		}
		logging.Debug("vips resize failed for %s, falling back to imaging: %v", filepath.Base(req.Path), err)
	}

	start := time.Now()
	defer func() {
		metrics.TranscoderJobDuration.WithLabelValues("imaging").Observe(time.Since(start).Seconds())
	}()

	img, err := imaging.Open(req.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, req.Path, err)
	}

	resized := imaging.Fit(img, req.Width, req.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := encode(&buf, resized, req.Format); err != nil {
		return nil, fmt.Errorf("failed to encode %s as %s: %w", req.Path, req.Format, err)
	}

	logging.Debug("Resized %s from %dx%d to %dx%d (%d bytes)",
		filepath.Base(req.Path), req.SourceWidth, req.SourceHeight,
		resized.Bounds().Dx(), resized.Bounds().Dy(), buf.Len())

	return buf.Bytes(), nil
}
