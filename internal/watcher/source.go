package watcher

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	BackendAuto     = "auto"
	BackendInotify  = "inotify"
	BackendFSNotify = "fsnotify"
)

// NewSource creates the change source for backend. "auto" picks inotify on
// Linux and fsnotify elsewhere.
func NewSource(backend string, batchSize int) (Source, error) {
	name := strings.ToLower(strings.TrimSpace(backend))
	if name == "" || name == BackendAuto {
		name = BackendFSNotify
		if runtime.GOOS == "linux" {
			name = BackendInotify
		}
	}

	switch name {
	case BackendInotify:
		source, err := NewInotifySource()
		if err != nil {
			return nil, err
		}
		return source, nil
	case BackendFSNotify:
		source, err := NewFSNotifySource(batchSize)
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
