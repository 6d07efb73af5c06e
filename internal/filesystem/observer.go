package filesystem

// Observer records filesystem retry metrics. The implementation lives in
// the metrics package, which imports this one.
type Observer interface {
	// retryOp is "stat" or "open"; volume is the label from the VolumeResolver.
	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

// nil means metric recording is skipped (tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
