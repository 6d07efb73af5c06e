package media

import (
	"image"
	"path/filepath"
	"strings"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/webp" // WebP format support
)

// ImageInfo is the metadata extracted from a single image file.
type ImageInfo struct {
	// Stem is the filename without its extension.
	Stem string
	// Extension is lowercase without the leading dot.
	Extension string
	// Folder is the unsanitized parent directory name.
	Folder string
	Width  int
	Height int
	Format mediatypes.Format
}

// ExtractInfo reads path metadata and decodes only the image header for
// dimensions. A file that cannot be opened or decoded yields a zero
// width and height rather than an error.
func ExtractInfo(path string) ImageInfo {
	base := filepath.Base(path)
	rawExt := filepath.Ext(base)
	ext := mediatypes.NormalizeExtension(rawExt)

	info := ImageInfo{
		Stem:      strings.TrimSuffix(base, rawExt),
		Extension: ext,
		Folder:    filepath.Base(filepath.Dir(path)),
		Format:    mediatypes.FormatFromExtension(ext),
	}

	info.Width, info.Height = GetImageDimensions(path)
	return info
}

// GetImageDimensions returns image dimensions without fully decoding the image.
// Returns (0, 0) when the file cannot be read or its header is not a
// registered image format.
func GetImageDimensions(path string) (int, int) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Debug("Could not open %s for dimensions: %v", path, err)
		return 0, 0
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		logging.Debug("Could not decode dimensions for %s: %v", path, err)
		return 0, 0
	}

	return config.Width, config.Height
}
