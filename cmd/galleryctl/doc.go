// Command galleryctl manages the photo gallery database from the command
// line, without a running server.
//
// Usage:
//
//	galleryctl [--database-dir DIR] [--images-dirs A,B] <command>
//
// Commands:
//
//	index [--force]       Scan the image directories. Progress is shown on
//	                      one line when stdout is a terminal. Ctrl-C stops
//	                      the scan without updating the last indexed time.
//
//	status                Print library counts, roots and the last index time.
//
//	folders list          List folders with image counts (--search, --root).
//
//	folders delete NAME   Remove every record of a folder. Files on disk
//	                      are not touched.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//	IMAGES_DIRS  - Comma-separated scan roots (default: /images)
//	CONFIG_FILE  - Optional YAML configuration file
package main
