package watcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"notifytail/internal/charset"
	"notifytail/internal/linebuf"
	"notifytail/internal/logging"
	"notifytail/internal/metrics"
	"notifytail/internal/notify"
)

// Options controls watcher behavior. Source and Sink are required.
type Options struct {
	Source     Source
	Sink       notify.Sink
	Decoder    *charset.Decoder
	Logger     *logging.Logger
	Metrics    *metrics.Registry
	BufferSize int
}

// Watcher ties the registry to a change source and a notification sink.
type Watcher struct {
	source     Source
	sink       notify.Sink
	decoder    *charset.Decoder
	logger     *logging.Logger
	metrics    *metrics.Registry
	bufferSize int
	registry   *Registry

	retryBaseDelay time.Duration
	now            func() time.Time
}

func New(options Options) (*Watcher, error) {
	if options.Source == nil {
		return nil, errors.New("change source is required")
	}
	if options.Sink == nil {
		return nil, errors.New("notification sink is required")
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	bufferSize := options.BufferSize
	if bufferSize <= 0 {
		bufferSize = linebuf.DefaultCapacity
	}

	return &Watcher{
		source:         options.Source,
		sink:           options.Sink,
		decoder:        options.Decoder,
		logger:         logger.With(map[string]string{"notify-tail.category": "watcher"}),
		metrics:        options.Metrics,
		bufferSize:     bufferSize,
		registry:       newRegistry(),
		retryBaseDelay: retryBaseDelay,
		now:            time.Now,
	}, nil
}

func (watcher *Watcher) Registry() *Registry {
	return watcher.registry
}

// RegisterFile adds a file entry for path and tries to arm it right away.
// The entry is returned even when arming fails; it will be armed once the
// file appears in its parent directory.
func (watcher *Watcher) RegisterFile(path string) (*Entry, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	entry := newFileEntry(path, watcher.bufferSize)
	if err := watcher.registry.add(entry); err != nil {
		return nil, err
	}
	watcher.arm(entry)
	return entry, nil
}

// Run reads change batches until ctx is cancelled or the source fails
// repeatedly. Cancelling ctx closes the source to unblock a pending read.
func (watcher *Watcher) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = watcher.source.Close()
	})
	defer stop()

	failures := 0
	for {
		events, err := watcher.source.ReadBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrSourceClosed) {
				return err
			}
			watcher.metrics.IncBatchErrors()
			watcher.logger.Warn("error reading change events", map[string]string{
				"error":   err.Error(),
				"attempt": strconv.Itoa(failures + 1),
			})
			if failures+1 >= maxBatchFailures {
				return fmt.Errorf("read change events: %w", err)
			}
			if !sleepContext(ctx, watcher.retryDelay(failures)) {
				return nil
			}
			failures++
			continue
		}
		failures = 0
		watcher.HandleBatch(ctx, events)
	}
}

// Close releases every open file and subscription, then the source.
func (watcher *Watcher) Close() error {
	var errs []error
	for _, entry := range watcher.registry.Entries() {
		if entry.file != nil {
			if err := entry.file.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", entry.path, err))
			}
			entry.file = nil
		}
		watcher.registry.unbind(entry)
	}
	if err := watcher.source.Close(); err != nil && !errors.Is(err, ErrSourceClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func sleepContext(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
