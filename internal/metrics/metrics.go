package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Registry counts watcher activity. All methods are safe on a nil receiver.
type Registry struct {
	linesEmitted     atomic.Int64
	overlongSplits   atomic.Int64
	truncations      atomic.Int64
	arms             atomic.Int64
	armFailures      atomic.Int64
	disarms          atomic.Int64
	unknownHandles   atomic.Int64
	unhandledClasses atomic.Int64
	decodeFailures   atomic.Int64
	sinkFailures     atomic.Int64
	batchErrors      atomic.Int64
}

type Snapshot struct {
	LinesEmitted     int64
	OverlongSplits   int64
	Truncations      int64
	Arms             int64
	ArmFailures      int64
	Disarms          int64
	UnknownHandles   int64
	UnhandledClasses int64
	DecodeFailures   int64
	SinkFailures     int64
	BatchErrors      int64
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) IncLinesEmitted() {
	if r == nil {
		return
	}
	r.linesEmitted.Add(1)
}

func (r *Registry) IncOverlongSplits() {
	if r == nil {
		return
	}
	r.overlongSplits.Add(1)
}

func (r *Registry) IncTruncations() {
	if r == nil {
		return
	}
	r.truncations.Add(1)
}

func (r *Registry) IncArms() {
	if r == nil {
		return
	}
	r.arms.Add(1)
}

func (r *Registry) IncArmFailures() {
	if r == nil {
		return
	}
	r.armFailures.Add(1)
}

func (r *Registry) IncDisarms() {
	if r == nil {
		return
	}
	r.disarms.Add(1)
}

func (r *Registry) IncUnknownHandles() {
	if r == nil {
		return
	}
	r.unknownHandles.Add(1)
}

func (r *Registry) IncUnhandledClasses() {
	if r == nil {
		return
	}
	r.unhandledClasses.Add(1)
}

func (r *Registry) IncDecodeFailures() {
	if r == nil {
		return
	}
	r.decodeFailures.Add(1)
}

func (r *Registry) IncSinkFailures() {
	if r == nil {
		return
	}
	r.sinkFailures.Add(1)
}

func (r *Registry) IncBatchErrors() {
	if r == nil {
		return
	}
	r.batchErrors.Add(1)
}

func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		LinesEmitted:     r.linesEmitted.Load(),
		OverlongSplits:   r.overlongSplits.Load(),
		Truncations:      r.truncations.Load(),
		Arms:             r.arms.Load(),
		ArmFailures:      r.armFailures.Load(),
		Disarms:          r.disarms.Load(),
		UnknownHandles:   r.unknownHandles.Load(),
		UnhandledClasses: r.unhandledClasses.Load(),
		DecodeFailures:   r.decodeFailures.Load(),
		SinkFailures:     r.sinkFailures.Load(),
		BatchErrors:      r.batchErrors.Load(),
	}
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}
	snapshot := r.Snapshot()

	writeCounter(writer, "notify_tail_lines_emitted_total", "Lines handed to the notification sink", snapshot.LinesEmitted)
	writeCounter(writer, "notify_tail_overlong_splits_total", "Lines force-split because they exceeded the buffer", snapshot.OverlongSplits)
	writeCounter(writer, "notify_tail_truncations_total", "Truncations detected on watched files", snapshot.Truncations)
	writeCounter(writer, "notify_tail_arms_total", "Successful file arm operations", snapshot.Arms)
	writeCounter(writer, "notify_tail_arm_failures_total", "Failed file arm operations", snapshot.ArmFailures)
	writeCounter(writer, "notify_tail_disarms_total", "Files disarmed after removal or move", snapshot.Disarms)
	writeCounter(writer, "notify_tail_unknown_handle_events_total", "Events for handles without an entry", snapshot.UnknownHandles)
	writeCounter(writer, "notify_tail_unhandled_events_total", "Events carrying unhandled classes", snapshot.UnhandledClasses)
	writeCounter(writer, "notify_tail_decode_failures_total", "Lines that could not be decoded as text", snapshot.DecodeFailures)
	writeCounter(writer, "notify_tail_sink_failures_total", "Notification sink errors", snapshot.SinkFailures)
	writeCounter(writer, "notify_tail_batch_errors_total", "Errors reading change notification batches", snapshot.BatchErrors)
	return nil
}

func writeHelp(writer io.Writer, metric, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
}

func writeCounter(writer io.Writer, metric, help string, value int64) {
	writeHelp(writer, metric, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", metric)
	fmt.Fprintf(writer, "%s %d\n", metric, value)
}
