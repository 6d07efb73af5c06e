package transcoder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photo-gallery/internal/mediatypes"
)

func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func decodedSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	return cfg.Width, cfg.Height, format
}

// =============================================================================
// Request
// =============================================================================

func TestNeedsResize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"smaller box", Request{SourceWidth: 800, SourceHeight: 600, Width: 150, Height: 150}, true},
		{"narrower only", Request{SourceWidth: 800, SourceHeight: 600, Width: 400, Height: 1000}, true},
		{"equal box", Request{SourceWidth: 800, SourceHeight: 600, Width: 800, Height: 600}, false},
		{"larger box", Request{SourceWidth: 800, SourceHeight: 600, Width: 2000, Height: 2000}, false},
		{"missing width", Request{SourceWidth: 800, SourceHeight: 600, Width: 0, Height: 100}, false},
		{"negative height", Request{SourceWidth: 800, SourceHeight: 600, Width: 100, Height: -1}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.req.NeedsResize(); got != tt.want {
				t.Errorf("NeedsResize() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Resize
// =============================================================================

func TestResizeNoUpscaleReturnsOriginal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestImage(t, dir, "small.jpg", 100, 100)
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	tr := New(2, false)
	got, err := tr.Resize(context.Background(), Request{
		Path: path, Format: mediatypes.FormatJPEG,
		SourceWidth: 100, SourceHeight: 100, Width: 200, Height: 200,
	})
	if err != nil {
		t.Fatalf("Resize() failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Error("Expected original bytes when the box is larger than the source")
	}
}

func TestResizeFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		file       string
		format     mediatypes.Format
		wantFormat string
	}{
		{"jpeg", "photo.jpg", mediatypes.FormatJPEG, "jpeg"},
		{"png", "photo.png", mediatypes.FormatPNG, "png"},
		{"gif", "photo.gif", mediatypes.FormatGIF, "gif"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeTestImage(t, t.TempDir(), tt.file, 400, 200)
			tr := New(1, false)

			got, err := tr.Resize(context.Background(), Request{
				Path: path, Format: tt.format,
				SourceWidth: 400, SourceHeight: 200, Width: 100, Height: 100,
			})
			if err != nil {
				t.Fatalf("Resize() failed: %v", err)
			}

			w, h, format := decodedSize(t, got)
			if format != tt.wantFormat {
				t.Errorf("output format = %s, want %s", format, tt.wantFormat)
			}
			// Fit keeps the 2:1 aspect ratio inside 100x100
			if w != 100 || h != 50 {
				t.Errorf("output size = %dx%d, want 100x50", w, h)
			}
		})
	}
}

func TestResizeMissingFile(t *testing.T) {
	t.Parallel()

	tr := New(1, false)
	_, err := tr.Resize(context.Background(), Request{
		Path:   filepath.Join(t.TempDir(), "gone.jpg"),
		Format: mediatypes.FormatJPEG, SourceWidth: 100, SourceHeight: 100, Width: 10, Height: 10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resize() error = %v, want ErrNotFound", err)
	}
}

func TestResizeUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeTestImage(t, t.TempDir(), "photo.jpg", 100, 100)
	tr := New(1, false)

	_, err := tr.Resize(context.Background(), Request{
		Path: path, Format: mediatypes.FormatUnsupported,
		SourceWidth: 100, SourceHeight: 100, Width: 10, Height: 10,
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Resize() error = %v, want ErrUnsupportedFormat", err)
	}

	// An unsupported format is still served as-is when no resize is needed.
	if _, err := tr.Resize(context.Background(), Request{
		Path: path, Format: mediatypes.FormatUnsupported,
		SourceWidth: 100, SourceHeight: 100, Width: 500, Height: 500,
	}); err != nil {
		t.Errorf("Resize() without downscale failed: %v", err)
	}
}

func TestResizeCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("definitely not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := New(1, false)
	_, err := tr.Resize(context.Background(), Request{
		Path: path, Format: mediatypes.FormatJPEG,
		SourceWidth: 1000, SourceHeight: 1000, Width: 10, Height: 10,
	})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Resize() error = %v, want ErrDecode", err)
	}
}

func TestResizeRespectsContextWhilePoolBusy(t *testing.T) {
	t.Parallel()

	path := writeTestImage(t, t.TempDir(), "photo.jpg", 200, 200)
	tr := New(1, false)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = tr.pool.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Resize(ctx, Request{
		Path: path, Format: mediatypes.FormatJPEG,
		SourceWidth: 200, SourceHeight: 200, Width: 50, Height: 50,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Resize() error = %v, want DeadlineExceeded", err)
	}
}

func TestVipsSupports(t *testing.T) {
	t.Parallel()

	if vipsSupports(mediatypes.FormatGIF) {
		t.Error("GIF should use the imaging path")
	}
	if !vipsSupports(mediatypes.FormatJPEG) {
		t.Error("JPEG should be handled by vips")
	}
	if IsVipsAvailable() {
		t.Error("vips should not be initialized in unit tests")
	}
}
