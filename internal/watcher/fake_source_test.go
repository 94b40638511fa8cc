package watcher

import (
	"context"
	"errors"
	"os"
	"sync"
)

type fakeSubscription struct {
	path    string
	classes ClassSet
}

// fakeSource subscribes only to paths that exist, like the OS would, and
// hands out batches pushed by the test.
type fakeSource struct {
	next          Handle
	subscriptions map[Handle]fakeSubscription
	failures      map[string]error
	batches       chan []Event
	errs          chan error
	closed        chan struct{}
	closeOnce     sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		next:          100,
		subscriptions: make(map[Handle]fakeSubscription),
		failures:      make(map[string]error),
		batches:       make(chan []Event, 8),
		errs:          make(chan error, 8),
		closed:        make(chan struct{}),
	}
}

func (source *fakeSource) Subscribe(path string, classes ClassSet) (Handle, error) {
	if err := source.failures[path]; err != nil {
		return NoHandle, err
	}
	if _, err := os.Stat(path); err != nil {
		return NoHandle, err
	}
	source.next++
	source.subscriptions[source.next] = fakeSubscription{path: path, classes: classes}
	return source.next, nil
}

func (source *fakeSource) Unsubscribe(handle Handle) error {
	if _, ok := source.subscriptions[handle]; !ok {
		return errors.New("invalid watch descriptor")
	}
	delete(source.subscriptions, handle)
	return nil
}

func (source *fakeSource) ReadBatch(ctx context.Context) ([]Event, error) {
	select {
	case batch := <-source.batches:
		return batch, nil
	case err := <-source.errs:
		return nil, err
	case <-source.closed:
		return nil, ErrSourceClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (source *fakeSource) Close() error {
	source.closeOnce.Do(func() {
		close(source.closed)
	})
	return nil
}

func (source *fakeSource) handleFor(path string) Handle {
	for handle, sub := range source.subscriptions {
		if sub.path == path {
			return handle
		}
	}
	return NoHandle
}
