package streaming

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates a single chunk could not be written in time,
	// typically a client reading too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the client disconnected before the body was sent.
	ErrClientGone = errors.New("client disconnected")
)

// Config configures chunked body writes.
type Config struct {
	// WriteTimeout bounds each chunk write (0 = no deadline)
	WriteTimeout time.Duration
	// ChunkSize is the size of chunks to write (0 = one write)
	ChunkSize int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024, // 64KB chunks
	}
}

// WriteBody writes data in chunks, extending the connection write deadline
// before each one so a large download is bounded per chunk instead of as a
// whole. Writers that do not support deadlines are written to without one.
func WriteBody(ctx context.Context, w http.ResponseWriter, data []byte, config Config) error {
	return Stream(ctx, w, bytes.NewReader(data), config)
}

// Stream copies r to w the same way WriteBody does.
func Stream(ctx context.Context, w http.ResponseWriter, r io.Reader, config Config) error {
	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1 << 20
	}

	rc := http.NewResponseController(w)
	deadlines := config.WriteTimeout > 0
	buf := make([]byte, chunkSize)
	var written int64

	defer func() {
		metrics.StreamBytesTotal.Add(float64(written))
		if deadlines {
			// clear the deadline for keep-alive reuse
			_ = rc.SetWriteDeadline(time.Time{})
		}
	}()

	for {
		if ctx.Err() != nil {
			metrics.StreamAbortsTotal.WithLabelValues("client_gone").Inc()
			logging.Debug("Client went away after %d bytes", written)
			return ErrClientGone
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if deadlines {
				if err := rc.SetWriteDeadline(time.Now().Add(config.WriteTimeout)); err != nil {
					if !errors.Is(err, http.ErrNotSupported) {
						logging.Debug("Could not set write deadline: %v", err)
					}
					deadlines = false
				}
			}

			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return classifyWriteError(ctx, err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			metrics.StreamAbortsTotal.WithLabelValues("error").Inc()
			return readErr
		}
	}

	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return classifyWriteError(ctx, err)
	}
	return nil
}

func classifyWriteError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		metrics.StreamAbortsTotal.WithLabelValues("timeout").Inc()
		return ErrWriteTimeout
	case ctx.Err() != nil:
		metrics.StreamAbortsTotal.WithLabelValues("client_gone").Inc()
		return ErrClientGone
	default:
		metrics.StreamAbortsTotal.WithLabelValues("error").Inc()
		return err
	}
}
