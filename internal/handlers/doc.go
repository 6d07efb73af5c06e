// Package handlers provides the HTTP API of the photo gallery.
//
// It includes handlers for:
//   - Starting, cancelling and inspecting index runs
//   - Paged, random and tag-filtered image listings
//   - Cached photo and folder thumbnails and sized downloads
//   - Folder, root and tag management
//   - Gallery settings and library statistics
//   - Health, readiness and version probes
//
// Image responses carry a strong ETag and honor If-None-Match.
package handlers
