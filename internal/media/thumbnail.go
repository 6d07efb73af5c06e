package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/groupcache/singleflight"

	"photo-gallery/internal/database"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"
	"photo-gallery/internal/metrics"
	"photo-gallery/internal/transcoder"
)

const (
	// DefaultThumbnailSize is used for a missing width or height.
	DefaultThumbnailSize = 150
	// ThumbnailTTL is how long thumbnails stay cached and how long clients may keep them.
	ThumbnailTTL = 7 * 24 * time.Hour
	// DownloadTTL is the client cache lifetime for downloads.
	DownloadTTL = 24 * time.Hour
)

// Lookup resolves image records.
type Lookup interface {
	GetByHash(ctx context.Context, hash string) (*database.Image, error)
	Random(ctx context.Context, f database.RandomFilter) ([]database.Image, error)
}

// Resizer produces resized image bytes.
type Resizer interface {
	Resize(ctx context.Context, req transcoder.Request) ([]byte, error)
}

// Cache stores encoded thumbnails.
type Cache interface {
	Get(key string) ([]byte, bool)
	SetWithTTL(key string, value []byte, ttl time.Duration)
}

// Result is an encoded image ready to serve.
type Result struct {
	Data        []byte
	ContentType string
	// MaxAge is the client cache lifetime.
	MaxAge time.Duration
	Cached bool
}

// ThumbnailService serves thumbnails through the cache and sized downloads
// straight from the transcoder.
type ThumbnailService struct {
	lookup  Lookup
	resizer Resizer
	cache   Cache
	table   singleflight.Group // keyed by cache key
}

// NewThumbnailService wires the repository, transcoder and cache together.
func NewThumbnailService(lookup Lookup, resizer Resizer, cache Cache) *ThumbnailService {
	return &ThumbnailService{lookup: lookup, resizer: resizer, cache: cache}
}

// PhotoCacheKey is the cache key for a photo thumbnail of the given size.
func PhotoCacheKey(hash string, w, h int) string {
	return fmt.Sprintf("thumb_%s_%dx%d", hash, w, h)
}

// FolderCacheKey is the cache key for the n-th thumbnail of a folder.
func FolderCacheKey(folder string, n, w, h int) string {
	return fmt.Sprintf("thumb_%s_%d_%dx%d", folder, n, w, h)
}

func thumbnailSize(w, h int) (int, int) {
	if w <= 0 {
		w = DefaultThumbnailSize
	}
	if h <= 0 {
		h = DefaultThumbnailSize
	}
	return w, h
}

// PhotoThumbnail returns the thumbnail of one image, fit within w x h.
func (s *ThumbnailService) PhotoThumbnail(ctx context.Context, hash string, w, h int) (*Result, error) {
	if err := ValidateHash(hash); err != nil {
		return nil, err
	}
	w, h = thumbnailSize(w, h)
	key := PhotoCacheKey(hash, w, h)

	if data, ok := s.cache.Get(key); ok {
		metrics.ThumbnailCacheHits.WithLabelValues("photo").Inc()
		logging.Debug("Thumbnail cache hit: %s", key)
		return &Result{Data: data, ContentType: http.DetectContentType(data), MaxAge: ThumbnailTTL, Cached: true}, nil
	}
	metrics.ThumbnailCacheMisses.WithLabelValues("photo").Inc()
	logging.Debug("Thumbnail cache miss: %s", key)

	return s.generate(ctx, key, func(ctx context.Context) (*database.Image, error) {
		return s.getImage(ctx, hash)
	}, w, h)
}

// FolderThumbnail returns a thumbnail of a random image from folder. n
// distinguishes several thumbnails of the same folder (default 1); each
// stays fixed until its cache entry expires.
func (s *ThumbnailService) FolderThumbnail(ctx context.Context, folder string, n, w, h int) (*Result, error) {
	if err := ValidateFolder(folder); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 1
	}
	w, h = thumbnailSize(w, h)
	key := FolderCacheKey(folder, n, w, h)

	if data, ok := s.cache.Get(key); ok {
		metrics.ThumbnailCacheHits.WithLabelValues("folder").Inc()
		logging.Debug("Thumbnail cache hit: %s", key)
		return &Result{Data: data, ContentType: http.DetectContentType(data), MaxAge: ThumbnailTTL, Cached: true}, nil
	}
	metrics.ThumbnailCacheMisses.WithLabelValues("folder").Inc()
	logging.Debug("Thumbnail cache miss: %s", key)

	return s.generate(ctx, key, func(ctx context.Context) (*database.Image, error) {
		images, err := s.lookup.Random(ctx, database.RandomFilter{Folder: folder, Size: 1})
		if err != nil {
			return nil, fmt.Errorf("failed to pick folder image: %w", err)
		}
		if len(images) == 0 {
			return nil, fmt.Errorf("%w: folder %s has no images", ErrNotFound, folder)
		}
		return &images[0], nil
	}, w, h)
}

// generate builds the thumbnail for key once, however many requests miss
// on it concurrently. The work runs detached from the caller's cancellation
// so waiters sharing the flight are not failed by one client leaving.
func (s *ThumbnailService) generate(ctx context.Context, key string, pick func(context.Context) (*database.Image, error), w, h int) (*Result, error) {
	val, err := s.table.Do(key, func() (interface{}, error) {
		// A flight that finished just before this one started has filled the cache.
		if data, ok := s.cache.Get(key); ok {
			return &Result{Data: data, ContentType: http.DetectContentType(data), MaxAge: ThumbnailTTL}, nil
		}

		ctx := context.WithoutCancel(ctx)
		img, err := pick(ctx)
		if err != nil {
			return nil, err
		}
		data, err := s.resizer.Resize(ctx, requestFor(img, w, h))
		if err != nil {
			return nil, err
		}

		s.cache.SetWithTTL(key, data, ThumbnailTTL)
		return &Result{Data: data, ContentType: contentType(img, data), MaxAge: ThumbnailTTL}, nil
	})
	if err != nil {
		return nil, err
	}
	res := *val.(*Result)
	return &res, nil
}

// Download returns the image resized to fit w x h when both are given and
// smaller than the original, otherwise the original bytes. Nothing is cached.
func (s *ThumbnailService) Download(ctx context.Context, hash string, w, h int) (*Result, error) {
	if err := ValidateHash(hash); err != nil {
		return nil, err
	}

	img, err := s.getImage(ctx, hash)
	if err != nil {
		return nil, err
	}

	data, err := s.resizer.Resize(ctx, requestFor(img, w, h))
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, ContentType: contentType(img, data), MaxAge: DownloadTTL}, nil
}

// Filename returns the download filename for the image with hash.
func (s *ThumbnailService) Filename(ctx context.Context, hash string) (string, error) {
	img, err := s.getImage(ctx, hash)
	if err != nil {
		return "", err
	}
	return img.Filename + "." + img.Extension, nil
}

func (s *ThumbnailService) getImage(ctx context.Context, hash string) (*database.Image, error) {
	img, err := s.lookup.GetByHash(ctx, hash)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: image %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up image %s: %w", hash, err)
	}
	return img, nil
}

func requestFor(img *database.Image, w, h int) transcoder.Request {
	return transcoder.Request{
		Path:         img.Path,
		Format:       mediatypes.FormatFromExtension(img.Extension),
		SourceWidth:  img.Width,
		SourceHeight: img.Height,
		Width:        w,
		Height:       h,
	}
}

// contentType prefers the stored extension and falls back to sniffing.
func contentType(img *database.Image, data []byte) string {
	if mime := mediatypes.GetMimeType(img.Extension); mime != "application/octet-stream" {
		return mime
	}
	return http.DetectContentType(data)
}
