package logging

import (
	"strings"
	"sync"

	"notifytail/internal/buffer"
)

type LogBuffer struct {
	mu      sync.Mutex
	entries *buffer.Ring[LogEntry]
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: buffer.NewRing[LogEntry](size),
	}
}

func (b *LogBuffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.entries == nil {
		return
	}

	b.entries.Add(entry)
}

func (b *LogBuffer) List() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries.List()
}

// Matching returns retained entries at level whose message contains substr.
func (b *LogBuffer) Matching(level Level, substr string) []LogEntry {
	var matched []LogEntry
	for _, entry := range b.List() {
		if level != "" && entry.Level != level {
			continue
		}
		if !strings.Contains(entry.Message, substr) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}
