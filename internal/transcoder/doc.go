/*
Package transcoder resizes stored images for thumbnails and sized downloads.

A Request names the source file, its encoder Format and its stored
dimensions. Resize returns the original bytes when the requested box is at
least as large as the source in both dimensions, so images are never
upscaled. Otherwise the source is decoded with EXIF auto-orientation, fit
inside the box with a Lanczos filter and re-encoded in its own format:
JPEG and WebP at quality 85, PNG and GIF losslessly.

Decoding and encoding run on a workers.Pool so a burst of thumbnail
requests cannot use more CPUs than configured. The caller's context bounds
the wait for a free slot.

When libvips is initialized (VIPS_ENABLED), JPEG, PNG and WebP resizes use
libvips thumbnailing, which shrinks during decode. Any libvips failure falls
back to the pure Go path.

Errors:

  - ErrNotFound: the source file is missing
  - ErrUnsupportedFormat: a downscale was requested for a format with no encoder
  - ErrDecode: the source is not a decodable image
*/
package transcoder
