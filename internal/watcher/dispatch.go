package watcher

import (
	"context"
	"fmt"
	"strconv"

	"notifytail/internal/fsutil"
)

type classHandler struct {
	classes ClassSet
	handle  func(watcher *Watcher, ctx context.Context, entry *Entry, event Event)
}

// dispatchTable is walked in order for every event; each row consumes its
// classes so that whatever is left afterwards was not handled.
var dispatchTable = []classHandler{
	{classes: NewClassSet(ClassModified), handle: (*Watcher).handleModified},
	{classes: NewClassSet(ClassCreated, ClassMovedIn), handle: (*Watcher).handleAppeared},
	{classes: NewClassSet(ClassAttrib), handle: (*Watcher).handleAttrib},
	{classes: NewClassSet(ClassRemoved, ClassMoved), handle: (*Watcher).handleGone},
	// the OS drops a watch after removal or after we unsubscribed
	{classes: NewClassSet(ClassAutoRemoved)},
}

// HandleBatch dispatches a batch of events in order.
func (watcher *Watcher) HandleBatch(ctx context.Context, events []Event) {
	for _, event := range events {
		watcher.dispatch(ctx, event)
	}
}

func (watcher *Watcher) dispatch(ctx context.Context, event Event) {
	entry, ok := watcher.registry.LookupByHandle(event.Handle)
	if !ok {
		watcher.metrics.IncUnknownHandles()
		fields := map[string]string{
			"handle":  strconv.Itoa(int(event.Handle)),
			"mask":    formatMask(event.Mask),
			"classes": event.Classes.String(),
		}
		if event.Classes.Without(NewClassSet(ClassAutoRemoved)) == 0 {
			watcher.logger.Debug("event for unknown watch handle", fields)
			return
		}
		watcher.logger.Warn("event for unknown watch handle", fields)
		return
	}

	remaining := event.Classes
	for _, row := range dispatchTable {
		if !remaining.HasAny(row.classes) {
			continue
		}
		remaining = remaining.Without(row.classes)
		if row.handle != nil {
			row.handle(watcher, ctx, entry, event)
		}
	}

	if remaining != 0 {
		watcher.metrics.IncUnhandledClasses()
		watcher.logger.Warn(fmt.Sprintf("unhandled event %s for '%s'", formatMask(event.Mask), entry.path), map[string]string{
			"path":    entry.path,
			"mask":    formatMask(event.Mask),
			"classes": remaining.String(),
		})
	}
}

func (watcher *Watcher) handleModified(ctx context.Context, entry *Entry, _ Event) {
	if entry.kind != KindFile {
		return
	}
	watcher.readAppended(ctx, entry)
}

// handleAppeared arms every file entry below the directory whose base name
// matches the created or moved-in entry. Already armed files are re-armed
// because the name now points at a different file.
func (watcher *Watcher) handleAppeared(_ context.Context, entry *Entry, event Event) {
	if entry.kind != KindDirectory || event.Name == "" {
		return
	}
	for _, file := range watcher.registry.filesUnder(entry.path) {
		if fsutil.BaseName(file.path) != event.Name {
			continue
		}
		watcher.arm(file)
	}
}

func (watcher *Watcher) handleAttrib(_ context.Context, entry *Entry, _ Event) {
	if entry.kind != KindFile || !entry.Armed() {
		return
	}
	if watcher.stillLinked(entry) {
		return
	}
	watcher.disarm(entry)
}

func (watcher *Watcher) handleGone(_ context.Context, entry *Entry, _ Event) {
	if entry.kind != KindFile {
		watcher.logger.Debug("ignoring removal of directory", map[string]string{"path": entry.path})
		return
	}
	watcher.disarm(entry)
}

func formatMask(mask uint32) string {
	return fmt.Sprintf("0x%08x", mask)
}
