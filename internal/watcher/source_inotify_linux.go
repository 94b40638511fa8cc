//go:build linux

package watcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	inotifyNameMax    = 255
	inotifyBufferSize = 16 * (unix.SizeofInotifyEvent + inotifyNameMax + 1)
)

var classMasks = []struct {
	class Class
	mask  uint32
}{
	{ClassModified, unix.IN_MODIFY},
	{ClassCreated, unix.IN_CREATE},
	{ClassMovedIn, unix.IN_MOVED_TO},
	{ClassRemoved, unix.IN_DELETE_SELF},
	{ClassMoved, unix.IN_MOVE_SELF},
	{ClassAttrib, unix.IN_ATTRIB},
	{ClassAutoRemoved, unix.IN_IGNORED},
}

// InotifySource talks to inotify directly. Handles are watch descriptors,
// and watches the kernel drops are reported as ClassAutoRemoved.
type InotifySource struct {
	fd        int
	file      *os.File
	buffer    []byte
	closeOnce sync.Once
	closeErr  error
}

func NewInotifySource() (*InotifySource, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify not available: %w", err)
	}
	// A non-blocking descriptor lets the runtime poller park reads, so
	// Close unblocks a pending ReadBatch.
	return &InotifySource{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), "inotify"),
		buffer: make([]byte, inotifyBufferSize),
	}, nil
}

func (source *InotifySource) Subscribe(path string, classes ClassSet) (Handle, error) {
	wd, err := unix.InotifyAddWatch(source.fd, path, classesToMask(classes))
	if err != nil {
		return NoHandle, &os.PathError{Op: "inotify_add_watch", Path: path, Err: err}
	}
	return Handle(wd), nil
}

func (source *InotifySource) Unsubscribe(handle Handle) error {
	if handle == NoHandle {
		return nil
	}
	_, err := unix.InotifyRmWatch(source.fd, uint32(handle))
	return err
}

func (source *InotifySource) ReadBatch(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := source.file.Read(source.buffer)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return nil, ErrSourceClosed
		}
		return nil, fmt.Errorf("read inotify events: %w", err)
	}
	return decodeInotify(source.buffer[:n])
}

func (source *InotifySource) Close() error {
	source.closeOnce.Do(func() {
		source.closeErr = source.file.Close()
	})
	return source.closeErr
}

func decodeInotify(buffer []byte) ([]Event, error) {
	var events []Event
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buffer[offset]))
		end := offset + unix.SizeofInotifyEvent + int(raw.Len)
		if end > len(buffer) {
			break
		}
		name := buffer[offset+unix.SizeofInotifyEvent : end]
		events = append(events, Event{
			Handle:  Handle(raw.Wd),
			Classes: maskToClasses(raw.Mask),
			Mask:    raw.Mask,
			Name:    string(bytes.TrimRight(name, "\x00")),
		})
		offset = end
	}
	if offset != len(buffer) {
		return events, fmt.Errorf("inotify read of %d bytes, decoded %d", len(buffer), offset)
	}
	return events, nil
}

func classesToMask(classes ClassSet) uint32 {
	var mask uint32
	for _, entry := range classMasks {
		if classes.Has(entry.class) {
			mask |= entry.mask
		}
	}
	return mask
}

// maskToClasses maps kernel bits to classes. IN_ISDIR only qualifies the
// subject of an event; any other unknown bit becomes ClassOther.
func maskToClasses(mask uint32) ClassSet {
	var classes ClassSet
	mask &^= unix.IN_ISDIR
	for _, entry := range classMasks {
		if mask&entry.mask != 0 {
			classes |= NewClassSet(entry.class)
			mask &^= entry.mask
		}
	}
	if mask != 0 {
		classes |= NewClassSet(ClassOther)
	}
	return classes
}
