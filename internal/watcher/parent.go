package watcher

import (
	"fmt"

	"notifytail/internal/fsutil"
)

// FindOrCreateDirectory returns the directory entry for path, creating and
// subscribing it on first use. A failed subscription leaves the entry in
// place without a handle.
func (watcher *Watcher) FindOrCreateDirectory(path string) (*Entry, error) {
	if existing, ok := watcher.registry.LookupByPath(path); ok {
		if existing.kind != KindDirectory {
			return nil, fmt.Errorf("%w: %s is a %s", ErrKindMismatch, path, existing.kind)
		}
		return existing, nil
	}

	entry := newDirectoryEntry(path)
	if err := watcher.registry.add(entry); err != nil {
		return nil, err
	}

	handle, err := watcher.source.Subscribe(path, directoryClasses)
	if err != nil {
		watcher.logger.Warn("failed to watch directory", map[string]string{
			"path":  path,
			"error": err.Error(),
		})
		return entry, nil
	}
	watcher.registry.bind(entry, handle)
	watcher.logger.Debug("watching directory", map[string]string{"path": path})
	return entry, nil
}

// resolveParent links a file entry to the entry for its parent directory.
// It runs at most once per entry.
func (watcher *Watcher) resolveParent(entry *Entry) {
	if entry.parentResolved {
		return
	}
	entry.parentResolved = true

	dir, _, ok := fsutil.SplitParent(entry.path)
	if !ok {
		watcher.logger.Debug("no parent directory, recreation will not be detected", map[string]string{
			"path": entry.path,
		})
		return
	}

	parent, err := watcher.FindOrCreateDirectory(dir)
	if err != nil {
		watcher.logger.Warn("cannot watch parent directory", map[string]string{
			"path":  entry.path,
			"error": err.Error(),
		})
		return
	}
	entry.parent = parent.path
}
