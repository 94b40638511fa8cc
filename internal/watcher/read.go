package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"notifytail/internal/notify"
)

// readAppended reads everything appended since the last cycle and splits it
// into lines. The size check against the stored offset races with writers;
// it is a heuristic for truncate-style rotation, not an exact detector.
func (watcher *Watcher) readAppended(ctx context.Context, entry *Entry) {
	if entry.kind != KindFile || !entry.Armed() {
		return
	}

	info, err := entry.file.Stat()
	if err != nil {
		watcher.logger.Warn("could not stat file", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
	} else if info.Size() < entry.offset {
		watcher.metrics.IncTruncations()
		watcher.logger.Warn(fmt.Sprintf("'%s' was truncated, reading whole file again", entry.path), map[string]string{
			"path":   entry.path,
			"offset": strconv.FormatInt(entry.offset, 10),
			"size":   strconv.FormatInt(info.Size(), 10),
		})
		if _, err := entry.file.Seek(0, io.SeekStart); err != nil {
			watcher.logger.Warn("could not rewind file", map[string]string{
				"path":  entry.path,
				"error": err.Error(),
			})
			return
		}
		entry.offset = 0
	}

	emit := func(line []byte) {
		watcher.emitLine(ctx, entry, line)
	}
	for {
		n, err := entry.file.Read(entry.lines.Space())
		if n > 0 {
			entry.lines.Commit(n)
			if entry.lines.Split(emit) {
				watcher.metrics.IncOverlongSplits()
				watcher.logger.Warn(fmt.Sprintf("'%s': line longer than %d bytes, splitting up", entry.path, entry.lines.Cap()-1), map[string]string{
					"path": entry.path,
				})
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				watcher.logger.Warn("error while reading", map[string]string{
					"path":  entry.path,
					"error": err.Error(),
				})
			}
			break
		}
		if n == 0 {
			break
		}
	}

	position, err := entry.file.Seek(0, io.SeekCurrent)
	if err != nil {
		watcher.logger.Warn("could not read file position", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
		return
	}
	entry.offset = position
}

// stillLinked reports whether entry.path still names the open file. A file
// that was unlinked while open keeps its inode alive, so removal can show up
// as an attribute change before any removal event.
func (watcher *Watcher) stillLinked(entry *Entry) bool {
	opened, err := entry.file.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(entry.path)
	if err != nil {
		return false
	}
	return os.SameFile(opened, current)
}

func (watcher *Watcher) emitLine(ctx context.Context, entry *Entry, line []byte) {
	text, err := watcher.decoder.Decode(line)
	if err != nil {
		watcher.metrics.IncDecodeFailures()
		watcher.logger.Debug("could not decode line", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
		text = fmt.Sprintf("ERROR: Read invalid line from '%s'", entry.path)
	}

	watcher.metrics.IncLinesEmitted()
	event := notify.Event{
		Message:    text,
		Path:       entry.path,
		OccurredAt: watcher.now().UTC(),
	}
	if err := watcher.sink.Emit(ctx, event); err != nil {
		watcher.metrics.IncSinkFailures()
		watcher.logger.Warn("notification failed", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
	}
}
