package notify

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSinkUnavailable = errors.New("notification sink unavailable")

// Event is one line ready for display.
type Event struct {
	Message    string
	Path       string
	OccurredAt time.Time
}

type Sink interface {
	Emit(ctx context.Context, event Event) error
}

type MemorySink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (sink *MemorySink) Emit(_ context.Context, event Event) error {
	if sink == nil {
		return ErrSinkUnavailable
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.events = append(sink.events, event)
	return sink.err
}

func (sink *MemorySink) Events() []Event {
	if sink == nil {
		return nil
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	events := make([]Event, len(sink.events))
	copy(events, sink.events)
	return events
}

// Messages returns the displayed texts in order.
func (sink *MemorySink) Messages() []string {
	events := sink.Events()
	if len(events) == 0 {
		return nil
	}
	messages := make([]string, len(events))
	for index, event := range events {
		messages[index] = event.Message
	}
	return messages
}

func (sink *MemorySink) SetError(err error) {
	if sink == nil {
		return
	}
	sink.mu.Lock()
	sink.err = err
	sink.mu.Unlock()
}
