//go:build !linux

package watcher

import (
	"context"
	"errors"
)

var errInotifyUnsupported = errors.New("inotify is only available on linux")

// InotifySource is unavailable outside Linux; use the fsnotify backend.
type InotifySource struct{}

func NewInotifySource() (*InotifySource, error) {
	return nil, errInotifyUnsupported
}

func (*InotifySource) Subscribe(string, ClassSet) (Handle, error) {
	return NoHandle, errInotifyUnsupported
}

func (*InotifySource) Unsubscribe(Handle) error {
	return errInotifyUnsupported
}

func (*InotifySource) ReadBatch(context.Context) ([]Event, error) {
	return nil, errInotifyUnsupported
}

func (*InotifySource) Close() error {
	return nil
}
