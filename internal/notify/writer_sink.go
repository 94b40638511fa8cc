package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterSink prints one line per event, prefixed with the source path.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

func (sink *WriterSink) Emit(_ context.Context, event Event) error {
	if sink == nil || sink.out == nil {
		return ErrSinkUnavailable
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if event.Path == "" {
		_, err := fmt.Fprintln(sink.out, event.Message)
		return err
	}
	_, err := fmt.Fprintf(sink.out, "%s: %s\n", event.Path, event.Message)
	return err
}
