// Package media holds the per-file building blocks of the gallery: content
// hashing, header-only metadata extraction, folder name rules and the
// cache-aside thumbnail service.
//
// HashFile streams a file through SHA-256 in 4096-byte chunks. ExtractInfo
// reads dimensions from the image header only and reports (0, 0) for files
// it cannot decode, which the indexer treats as a data-quality skip.
//
// ThumbnailService resolves a photo (by hash) or a folder (random member)
// through the repository, checks the thumbnail cache and calls the
// transcoder on a miss. Errors are typed so the HTTP layer can map them
// with HTTPStatus.
package media
