// Package mediatypes holds the image extension tables and the encoder
// Format enum shared by the indexer, the transcoder and the HTTP layer.
//
// It has no dependencies beyond the standard library so any package can
// import it without creating cycles.
//
// Extensions are compared lowercase without the leading dot:
//
//	mediatypes.IsImage(".JPG")               // true
//	mediatypes.FormatFromExtension("jpeg")   // FormatJPEG
//	mediatypes.FormatFromExtension("bmp")    // FormatUnsupported
//
// The Format is resolved once when metadata is extracted and carried on
// the record, so encoders switch on the enum rather than on strings.
package mediatypes
