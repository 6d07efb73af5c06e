// Package indexer discovers images under the configured roots and records
// them in the database.
//
// A Scanner walks one root to depth two, skipping hidden entries, vendor
// thumbnail directories (@eaDir) and anything that is not an image. Each
// image is hashed with SHA-256 and its dimensions read from the header;
// files with unreadable dimensions are not recorded. Incremental scans skip
// files unchanged since the last completed run and files whose name already
// carries a known hash prefix.
//
// The Indexer wraps the scanner in a single-flight task:
//   - Start launches a run in the background, or reports the run in progress
//   - Cancel asks the run to stop between files, then aborts it after a
//     short grace period
//   - Status reports progress and the last completed run
//
// Completed runs persist their finish time, which becomes the modification
// cutoff for the next incremental scan.
package indexer
