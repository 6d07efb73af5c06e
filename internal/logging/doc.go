// Package logging provides a simple leveled logging interface for the
// photo gallery.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable
// (DEBUG=true forces debug). Messages are written through zerolog, as
// console lines by default or JSON when LOG_FORMAT=json. With attaches
// structured fields such as request and indexing run IDs.
package logging
