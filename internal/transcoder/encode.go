package transcoder

import (
	"fmt"
	"image"
	"io"

	"photo-gallery/internal/mediatypes"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Quality used for lossy output formats.
const Quality = 85

func encode(w io.Writer, img image.Image, format mediatypes.Format) error {
	switch format {
	case mediatypes.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(Quality))
	case mediatypes.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case mediatypes.FormatGIF:
		return imaging.Encode(w, img, imaging.GIF)
	case mediatypes.FormatWEBP:
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, Quality)
		if err != nil {
			return fmt.Errorf("error creating webp encoder options: %w", err)
		}
		return webp.Encode(w, img, options)
	default:
		return ErrUnsupportedFormat
	}
}
