package watcher

import (
	"io"
	"os"
	"strconv"
)

// arm opens the file, subscribes to its changes and positions the read
// cursor at the current end. Content that exists at arming time is never
// reported. On failure the entry stays unarmed and is retried when its
// parent directory reports the file again.
func (watcher *Watcher) arm(entry *Entry) bool {
	watcher.resolveParent(entry)
	watcher.release(entry)

	file, err := os.Open(entry.path)
	if err != nil {
		watcher.metrics.IncArmFailures()
		watcher.logger.Warn("could not open file", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
		return false
	}

	handle, err := watcher.source.Subscribe(entry.path, fileClasses)
	if err != nil {
		_ = file.Close()
		watcher.metrics.IncArmFailures()
		watcher.logger.Warn("failed to add watch", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
		return false
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = watcher.source.Unsubscribe(handle)
		_ = file.Close()
		watcher.metrics.IncArmFailures()
		watcher.logger.Warn("could not seek to end of file", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
		return false
	}

	entry.file = file
	entry.offset = offset
	entry.lines.Reset()
	watcher.registry.bind(entry, handle)
	watcher.metrics.IncArms()
	watcher.logger.Info("watching file", map[string]string{
		"path":   entry.path,
		"offset": strconv.FormatInt(offset, 10),
	})
	return true
}

// disarm drops the file after it was removed or moved away. Buffered bytes
// of an unfinished line are discarded with it.
func (watcher *Watcher) disarm(entry *Entry) {
	if entry.kind != KindFile || !entry.Armed() {
		return
	}
	watcher.release(entry)
	entry.offset = 0
	entry.lines.Reset()
	watcher.metrics.IncDisarms()
	watcher.logger.Info("file went away, waiting for it to reappear", map[string]string{
		"path": entry.path,
	})
}

// release unsubscribes and closes whatever handles the entry still holds.
// Unsubscribe errors are expected when the OS already dropped the watch.
func (watcher *Watcher) release(entry *Entry) {
	if entry.handle != NoHandle {
		if err := watcher.source.Unsubscribe(entry.handle); err != nil {
			watcher.logger.Debug("unsubscribe failed", map[string]string{
				"path":  entry.path,
				"error": err.Error(),
			})
		}
		watcher.registry.unbind(entry)
	}
	if entry.file != nil {
		_ = entry.file.Close()
		entry.file = nil
	}
}
