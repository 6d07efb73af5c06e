package mediatypes

import "strings"

// ImageExtensions lists the extensions the indexer accepts, lowercase
// without the leading dot.
var ImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// MimeTypes maps image extensions to their MIME types.
var MimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// NormalizeExtension lowercases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImage reports whether ext (with or without a leading dot, any case)
// is an indexable image extension.
func IsImage(ext string) bool {
	return ImageExtensions[NormalizeExtension(ext)]
}

// GetMimeType returns the MIME type for ext.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[NormalizeExtension(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Format is the encoder family used when re-encoding a resized image.
type Format int

const (
	// FormatUnsupported is any extension without an encoder.
	FormatUnsupported Format = iota
	// FormatPNG encodes as PNG.
	FormatPNG
	// FormatJPEG encodes as JPEG.
	FormatJPEG
	// FormatGIF encodes as GIF.
	FormatGIF
	// FormatWEBP encodes as lossy WebP.
	FormatWEBP
)

// FormatFromExtension resolves the encoder family for ext.
// BMP is indexable but has no encoder, so it resolves to FormatUnsupported.
func FormatFromExtension(ext string) Format {
	switch NormalizeExtension(ext) {
	case "png":
		return FormatPNG
	case "jpg", "jpeg":
		return FormatJPEG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWEBP
	default:
		return FormatUnsupported
	}
}

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatWEBP:
		return "webp"
	default:
		return "unsupported"
	}
}

// MimeType returns the Content-Type for encoded output of this format.
func (f Format) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatWEBP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// Supported reports whether the format has an encoder.
func (f Format) Supported() bool {
	return f != FormatUnsupported
}
