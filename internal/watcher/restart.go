package watcher

import "time"

const (
	maxBatchFailures = 3
	retryBaseDelay   = 200 * time.Millisecond
)

func restartDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<attempt)
}

func (watcher *Watcher) retryDelay(attempt int) time.Duration {
	return restartDelay(watcher.retryBaseDelay, attempt)
}
