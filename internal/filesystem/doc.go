/*
Package filesystem wraps os.Stat, os.Open and os.ReadFile with retry logic
for NFS stale file handle errors (ESTALE).

Photo libraries are commonly mounted from a NAS. A scan that walks thousands
of files can hit ESTALE when the server re-exports a share, and a single
transient failure should not mark a photo as unreadable.

# Usage

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

Only ESTALE triggers a retry. Every other error is returned on the first
attempt. Backoff starts at 50ms and doubles up to 500ms, for at most three
retries.

# Metrics

Retry counters are recorded through an Observer installed with SetObserver.
The metrics package provides the Prometheus-backed implementation. Paths are
labeled by volume ("media", "database") via a VolumeResolver.
*/
package filesystem
