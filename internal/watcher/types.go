package watcher

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrDuplicate    = errors.New("path already registered")
	ErrKindMismatch = errors.New("path registered with a different kind")
	ErrSourceClosed = errors.New("change source closed")
)

type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (kind Kind) String() string {
	switch kind {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Class is one kind of change reported by a Source.
type Class uint8

const (
	ClassModified Class = iota
	ClassCreated
	ClassMovedIn
	ClassRemoved
	ClassMoved
	ClassAttrib
	ClassAutoRemoved
	// ClassOther marks backend bits that have no class of their own.
	ClassOther
)

var classNames = [...]string{
	ClassModified:    "modified",
	ClassCreated:     "created",
	ClassMovedIn:     "moved-in",
	ClassRemoved:     "removed",
	ClassMoved:       "moved",
	ClassAttrib:      "attrib",
	ClassAutoRemoved: "auto-removed",
	ClassOther:       "other",
}

func (class Class) String() string {
	if int(class) < len(classNames) {
		return classNames[class]
	}
	return "unknown"
}

// ClassSet holds several classes at once; a single event may carry more
// than one.
type ClassSet uint16

func NewClassSet(classes ...Class) ClassSet {
	var set ClassSet
	for _, class := range classes {
		set |= 1 << class
	}
	return set
}

func (set ClassSet) Has(class Class) bool {
	return set&(1<<class) != 0
}

func (set ClassSet) HasAny(other ClassSet) bool {
	return set&other != 0
}

func (set ClassSet) Without(other ClassSet) ClassSet {
	return set &^ other
}

func (set ClassSet) Classes() []Class {
	var classes []Class
	for class := ClassModified; class <= ClassOther; class++ {
		if set.Has(class) {
			classes = append(classes, class)
		}
	}
	return classes
}

func (set ClassSet) String() string {
	classes := set.Classes()
	if len(classes) == 0 {
		return "none"
	}
	names := make([]string, len(classes))
	for index, class := range classes {
		names[index] = class.String()
	}
	return strings.Join(names, "|")
}

var (
	fileClasses      = NewClassSet(ClassModified, ClassMoved, ClassRemoved, ClassAttrib)
	directoryClasses = NewClassSet(ClassCreated, ClassMovedIn)
)

// Handle identifies one subscription on a Source.
type Handle int

const NoHandle Handle = -1

// Event is one decoded change. Name is set for events reported through a
// directory subscription and holds the affected entry's base name. Mask is
// the backend's raw value, kept for diagnostics.
type Event struct {
	Handle  Handle
	Classes ClassSet
	Mask    uint32
	Name    string
}

// Source is the OS change-notification subsystem.
type Source interface {
	Subscribe(path string, classes ClassSet) (Handle, error)
	Unsubscribe(handle Handle) error
	// ReadBatch blocks until at least one event or an error is available.
	ReadBatch(ctx context.Context) ([]Event, error)
	Close() error
}
