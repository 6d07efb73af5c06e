package media

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"photo-gallery/internal/cache"
	"photo-gallery/internal/database"
	"photo-gallery/internal/transcoder"
)

type stubLookup struct {
	images map[string]database.Image
}

func (s *stubLookup) GetByHash(_ context.Context, hash string) (*database.Image, error) {
	img, ok := s.images[hash]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &img, nil
}

func (s *stubLookup) Random(_ context.Context, f database.RandomFilter) ([]database.Image, error) {
	var out []database.Image
	for _, img := range s.images {
		if img.FolderName == f.Folder {
			out = append(out, img)
		}
	}
	if len(out) > f.Size {
		out = out[:f.Size]
	}
	return out, nil
}

// countingResizer records every request instead of decoding anything.
type countingResizer struct {
	mu       sync.Mutex
	calls    int
	requests []transcoder.Request
	err      error
	delay    time.Duration
}

func (c *countingResizer) Resize(_ context.Context, req transcoder.Request) ([]byte, error) {
	time.Sleep(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	// JPEG magic so content sniffing works on cache hits
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, byte(req.Width)}, nil
}

func newTestService() (*ThumbnailService, *countingResizer) {
	lookup := &stubLookup{images: map[string]database.Image{
		"abcdef0123456789": {
			Path: "/photos/trip/a.jpg", Hash: "abcdef0123456789", Extension: "jpg",
			Filename: "a", FolderName: "trip", Width: 800, Height: 600,
		},
	}}
	resizer := &countingResizer{}
	return NewThumbnailService(lookup, resizer, cache.New(100, time.Hour)), resizer
}

func TestPhotoThumbnailCacheHitAvoidsRecompute(t *testing.T) {
	t.Parallel()

	svc, resizer := newTestService()
	ctx := context.Background()

	first, err := svc.PhotoThumbnail(ctx, "abcdef0123456789", 0, 0)
	if err != nil {
		t.Fatalf("PhotoThumbnail() failed: %v", err)
	}
	if first.Cached {
		t.Error("first request should not be a cache hit")
	}
	if first.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q", first.ContentType)
	}
	if first.MaxAge != ThumbnailTTL {
		t.Errorf("MaxAge = %v, want %v", first.MaxAge, ThumbnailTTL)
	}

	second, err := svc.PhotoThumbnail(ctx, "abcdef0123456789", 150, 150)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second request with default size should hit the cache")
	}
	if resizer.calls != 1 {
		t.Errorf("resizer called %d times, want 1", resizer.calls)
	}

	req := resizer.requests[0]
	if req.Width != DefaultThumbnailSize || req.Height != DefaultThumbnailSize {
		t.Errorf("default size = %dx%d", req.Width, req.Height)
	}
	if req.SourceWidth != 800 || req.Path != "/photos/trip/a.jpg" {
		t.Errorf("request not built from record: %+v", req)
	}
}

func TestPhotoThumbnailDistinctSizesAreDistinctEntries(t *testing.T) {
	t.Parallel()

	svc, resizer := newTestService()
	ctx := context.Background()

	if _, err := svc.PhotoThumbnail(ctx, "abcdef0123456789", 100, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PhotoThumbnail(ctx, "abcdef0123456789", 300, 300); err != nil {
		t.Fatal(err)
	}
	if resizer.calls != 2 {
		t.Errorf("resizer called %d times, want 2 for two sizes", resizer.calls)
	}
}

func TestPhotoThumbnailErrors(t *testing.T) {
	t.Parallel()

	svc, resizer := newTestService()
	ctx := context.Background()

	if _, err := svc.PhotoThumbnail(ctx, "bad!", 0, 0); !errors.Is(err, ErrBadRequest) {
		t.Errorf("invalid hash error = %v, want ErrBadRequest", err)
	}
	if _, err := svc.PhotoThumbnail(ctx, "ffffffffffffffff", 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown hash error = %v, want ErrNotFound", err)
	}

	resizer.err = transcoder.ErrDecode
	if _, err := svc.PhotoThumbnail(ctx, "abcdef0123456789", 10, 10); !errors.Is(err, transcoder.ErrDecode) {
		t.Errorf("decode failure error = %v, want ErrDecode", err)
	}
	resizer.err = nil

	// Failed transcodes must not be cached
	if _, err := svc.PhotoThumbnail(ctx, "abcdef0123456789", 10, 10); err != nil {
		t.Errorf("retry after failure = %v", err)
	}
}

func TestFolderThumbnail(t *testing.T) {
	t.Parallel()

	svc, resizer := newTestService()
	ctx := context.Background()

	if _, err := svc.FolderThumbnail(ctx, "trip", 0, 0, 0); err != nil {
		t.Fatalf("FolderThumbnail() failed: %v", err)
	}
	res, err := svc.FolderThumbnail(ctx, "trip", 1, 150, 150)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached || resizer.calls != 1 {
		t.Errorf("number 0 and 1 should share a cache entry: cached=%v calls=%d", res.Cached, resizer.calls)
	}

	if _, err := svc.FolderThumbnail(ctx, "trip", 2, 150, 150); err != nil {
		t.Fatal(err)
	}
	if resizer.calls != 2 {
		t.Errorf("a different number should be a separate entry, calls=%d", resizer.calls)
	}

	if _, err := svc.FolderThumbnail(ctx, "empty", 1, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty folder error = %v, want ErrNotFound", err)
	}
	if _, err := svc.FolderThumbnail(ctx, "../etc", 1, 0, 0); !errors.Is(err, ErrBadRequest) {
		t.Errorf("traversal error = %v, want ErrBadRequest", err)
	}
}

func TestDownloadIsNotCached(t *testing.T) {
	t.Parallel()

	svc, resizer := newTestService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.Download(ctx, "abcdef0123456789", 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if res.MaxAge != DownloadTTL {
			t.Errorf("MaxAge = %v, want %v", res.MaxAge, DownloadTTL)
		}
	}
	if resizer.calls != 2 {
		t.Errorf("resizer called %d times, want 2", resizer.calls)
	}
	if req := resizer.requests[0]; req.NeedsResize() {
		t.Error("download without a size should serve the original")
	}

	name, err := svc.Filename(ctx, "abcdef0123456789")
	if err != nil || name != "a.jpg" {
		t.Errorf("Filename() = %q, %v", name, err)
	}
}

func TestCacheKeys(t *testing.T) {
	t.Parallel()

	if got := PhotoCacheKey("abc", 150, 100); got != "thumb_abc_150x100" {
		t.Errorf("PhotoCacheKey = %q", got)
	}
	if got := FolderCacheKey("trip", 2, 150, 150); got != "thumb_trip_2_150x150" {
		t.Errorf("FolderCacheKey = %q", got)
	}
}

func TestConcurrentMissesComputeOnce(t *testing.T) {
	t.Parallel()

	lookup := &stubLookup{images: map[string]database.Image{
		"abcdef0123456789": {
			Path: "/photos/trip/a.jpg", Hash: "abcdef0123456789", Extension: "jpg",
			Filename: "a", FolderName: "trip", Width: 800, Height: 600,
		},
	}}

	tests := []struct {
		name  string
		fetch func(*ThumbnailService) (*Result, error)
	}{
		{"photo", func(s *ThumbnailService) (*Result, error) {
			return s.PhotoThumbnail(context.Background(), "abcdef0123456789", 120, 120)
		}},
		{"folder", func(s *ThumbnailService) (*Result, error) {
			return s.FolderThumbnail(context.Background(), "trip", 1, 120, 120)
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resizer := &countingResizer{delay: 50 * time.Millisecond}
			svc := NewThumbnailService(lookup, resizer, cache.New(100, time.Hour))

			const n = 8
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					res, err := tt.fetch(svc)
					if err == nil && len(res.Data) == 0 {
						err = errors.New("empty thumbnail")
					}
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					t.Errorf("concurrent request failed: %v", err)
				}
			}
			resizer.mu.Lock()
			defer resizer.mu.Unlock()
			if resizer.calls != 1 {
				t.Errorf("resizer called %d times for one key, want 1", resizer.calls)
			}
		})
	}
}
