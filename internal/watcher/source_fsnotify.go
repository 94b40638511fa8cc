package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const defaultBatchSize = 64

type subscription struct {
	handle  Handle
	classes ClassSet
}

// FSNotifySource adapts fsnotify to Source. fsnotify keys watches by path
// and reports a moved-in entry as Create, so ClassMovedIn never appears;
// both arrive as ClassCreated.
type FSNotifySource struct {
	watcher       *fsnotify.Watcher
	batchSize     int
	subscriptions map[string]subscription
	paths         map[Handle]string
	nextHandle    Handle
	closeOnce     sync.Once
	closeErr      error
}

func NewFSNotifySource(batchSize int) (*FSNotifySource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &FSNotifySource{
		watcher:       watcher,
		batchSize:     batchSize,
		subscriptions: make(map[string]subscription),
		paths:         make(map[Handle]string),
	}, nil
}

func (source *FSNotifySource) Subscribe(path string, classes ClassSet) (Handle, error) {
	key := filepath.Clean(path)
	if err := source.watcher.Add(key); err != nil {
		return NoHandle, err
	}
	if previous, ok := source.subscriptions[key]; ok {
		delete(source.paths, previous.handle)
	}
	source.nextHandle++
	handle := source.nextHandle
	source.subscriptions[key] = subscription{handle: handle, classes: classes}
	source.paths[handle] = key
	return handle, nil
}

func (source *FSNotifySource) Unsubscribe(handle Handle) error {
	key, ok := source.paths[handle]
	if !ok {
		return nil
	}
	delete(source.paths, handle)
	delete(source.subscriptions, key)
	err := source.watcher.Remove(key)
	if errors.Is(err, fsnotify.ErrNonExistentWatch) || errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}

func (source *FSNotifySource) ReadBatch(ctx context.Context) ([]Event, error) {
	var raw []fsnotify.Event
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case event, ok := <-source.watcher.Events:
		if !ok {
			return nil, ErrSourceClosed
		}
		raw = append(raw, event)
	case err, ok := <-source.watcher.Errors:
		if !ok {
			return nil, ErrSourceClosed
		}
		return nil, err
	}

drain:
	for len(raw) < source.batchSize {
		select {
		case event, ok := <-source.watcher.Events:
			if !ok {
				break drain
			}
			raw = append(raw, event)
		default:
			break drain
		}
	}

	events := make([]Event, 0, len(raw))
	for _, event := range raw {
		if translated, ok := source.translate(event); ok {
			events = append(events, translated)
		}
	}
	return events, nil
}

// translate attributes an fsnotify event to the subscription for the path
// itself, or failing that to the subscription for its directory.
func (source *FSNotifySource) translate(event fsnotify.Event) (Event, bool) {
	name := filepath.Clean(event.Name)
	if sub, ok := source.subscriptions[name]; ok {
		classes := selfClasses(event.Op) & sub.classes
		if classes != 0 {
			return Event{Handle: sub.handle, Classes: classes, Mask: uint32(event.Op)}, true
		}
	}
	if sub, ok := source.subscriptions[filepath.Dir(name)]; ok {
		classes := childClasses(event.Op) & sub.classes
		if classes != 0 {
			return Event{
				Handle:  sub.handle,
				Classes: classes,
				Mask:    uint32(event.Op),
				Name:    filepath.Base(name),
			}, true
		}
	}
	return Event{}, false
}

func selfClasses(op fsnotify.Op) ClassSet {
	var classes ClassSet
	if op.Has(fsnotify.Write) {
		classes |= NewClassSet(ClassModified)
	}
	if op.Has(fsnotify.Remove) {
		classes |= NewClassSet(ClassRemoved)
	}
	if op.Has(fsnotify.Rename) {
		classes |= NewClassSet(ClassMoved)
	}
	if op.Has(fsnotify.Chmod) {
		classes |= NewClassSet(ClassAttrib)
	}
	return classes
}

func childClasses(op fsnotify.Op) ClassSet {
	if op.Has(fsnotify.Create) {
		return NewClassSet(ClassCreated)
	}
	return 0
}

func (source *FSNotifySource) Close() error {
	source.closeOnce.Do(func() {
		source.closeErr = source.watcher.Close()
	})
	return source.closeErr
}
