package watcher

import (
	"os"

	"notifytail/internal/linebuf"
)

// Entry is the state kept for one watched path. Entries are owned by the
// Registry and live for the lifetime of the Watcher.
type Entry struct {
	path   string
	kind   Kind
	handle Handle

	// file-only state
	file   *os.File
	offset int64
	lines  *linebuf.Buffer

	// parent is the registry key of the directory entry, once resolved.
	parent         string
	parentResolved bool
}

func newFileEntry(path string, bufferSize int) *Entry {
	return &Entry{
		path:   path,
		kind:   KindFile,
		handle: NoHandle,
		lines:  linebuf.New(bufferSize),
	}
}

func newDirectoryEntry(path string) *Entry {
	return &Entry{
		path:           path,
		kind:           KindDirectory,
		handle:         NoHandle,
		parentResolved: true,
	}
}

func (entry *Entry) Path() string {
	return entry.path
}

func (entry *Entry) Kind() Kind {
	return entry.kind
}

func (entry *Entry) Handle() Handle {
	return entry.handle
}

// Armed reports whether a file entry holds both an open file and an active
// subscription. Directory entries report whether their subscription exists.
func (entry *Entry) Armed() bool {
	if entry.kind == KindDirectory {
		return entry.handle != NoHandle
	}
	return entry.handle != NoHandle && entry.file != nil
}

// Offset is the position of the next unread byte.
func (entry *Entry) Offset() int64 {
	return entry.offset
}

// Parent returns the directory entry key, if one has been linked.
func (entry *Entry) Parent() (string, bool) {
	return entry.parent, entry.parent != ""
}

// Pending returns a copy of the buffered bytes that are not yet a line.
func (entry *Entry) Pending() []byte {
	if entry.lines == nil {
		return nil
	}
	return append([]byte(nil), entry.lines.Pending()...)
}
