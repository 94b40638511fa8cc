package watcher

import "fmt"

// Registry owns every Entry, indexed by path and by subscription handle.
type Registry struct {
	entries  map[string]*Entry
	order    []string
	byHandle map[Handle]string
}

func newRegistry() *Registry {
	return &Registry{
		entries:  make(map[string]*Entry),
		byHandle: make(map[Handle]string),
	}
}

func (registry *Registry) add(entry *Entry) error {
	if _, exists := registry.entries[entry.path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, entry.path)
	}
	registry.entries[entry.path] = entry
	registry.order = append(registry.order, entry.path)
	return nil
}

func (registry *Registry) LookupByPath(path string) (*Entry, bool) {
	entry, ok := registry.entries[path]
	return entry, ok
}

func (registry *Registry) LookupByHandle(handle Handle) (*Entry, bool) {
	if handle == NoHandle {
		return nil, false
	}
	path, ok := registry.byHandle[handle]
	if !ok {
		return nil, false
	}
	return registry.LookupByPath(path)
}

// bind records handle as entry's active subscription.
func (registry *Registry) bind(entry *Entry, handle Handle) {
	if entry.handle != NoHandle {
		registry.unbind(entry)
	}
	entry.handle = handle
	if handle != NoHandle {
		registry.byHandle[handle] = entry.path
	}
}

func (registry *Registry) unbind(entry *Entry) {
	if entry.handle == NoHandle {
		return
	}
	if registry.byHandle[entry.handle] == entry.path {
		delete(registry.byHandle, entry.handle)
	}
	entry.handle = NoHandle
}

// Entries returns all entries in creation order.
func (registry *Registry) Entries() []*Entry {
	entries := make([]*Entry, 0, len(registry.order))
	for _, path := range registry.order {
		entries = append(entries, registry.entries[path])
	}
	return entries
}

func (registry *Registry) Len() int {
	return len(registry.entries)
}

// filesUnder returns the file entries linked to the directory at dirPath.
func (registry *Registry) filesUnder(dirPath string) []*Entry {
	var files []*Entry
	for _, path := range registry.order {
		entry := registry.entries[path]
		if entry.kind == KindFile && entry.parent == dirPath {
			files = append(files, entry)
		}
	}
	return files
}
