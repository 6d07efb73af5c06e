package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"completed", "cancelled", "aborted"} {
		IndexerRunsTotal.WithLabelValues(outcome)
	}

	for _, result := range []string{"inserted", "existing", "skipped", "invalid", "error"} {
		IndexerFilesTotal.WithLabelValues(result)
	}

	for _, kind := range []string{"photo", "folder"} {
		ThumbnailCacheHits.WithLabelValues(kind)
		ThumbnailCacheMisses.WithLabelValues(kind)
	}

	for _, reason := range []string{"capacity", "expired"} {
		ThumbnailCacheEvictions.WithLabelValues(reason)
	}

	for _, format := range []string{"png", "jpeg", "gif", "webp", "unsupported"} {
		for _, status := range []string{"success", "original", "error"} {
			TranscoderJobsTotal.WithLabelValues(format, status)
		}
	}

	for _, backend := range []string{"imaging", "vips"} {
		TranscoderJobDuration.WithLabelValues(backend)
	}

	for _, reason := range []string{"client_gone", "timeout", "error"} {
		StreamAbortsTotal.WithLabelValues(reason)
	}

	volumes := []string{"media", "database", "unknown"}
	for _, op := range []string{"stat", "open"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"insert_image", "upsert_image", "all_hashes", "get_by_hash", "get_by_path",
		"random", "paged", "by_folder", "by_tag", "count", "delete_folder", "folders", "roots",
		"tags", "set_tags", "settings", "metadata", "vacuum"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
