package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCommand = "notify-send"
	DefaultAppName = "notify-tail"
	DefaultUrgency = "low"
	DefaultTimeout = 10 * time.Second
)

type CommandOptions struct {
	Command string
	AppName string
	Urgency string
	Timeout time.Duration
}

// CommandSink shows each event as a desktop notification by running a
// notify-send compatible command.
type CommandSink struct {
	options CommandOptions
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewCommandSink(options CommandOptions) *CommandSink {
	if strings.TrimSpace(options.Command) == "" {
		options.Command = DefaultCommand
	}
	if strings.TrimSpace(options.AppName) == "" {
		options.AppName = DefaultAppName
	}
	if strings.TrimSpace(options.Urgency) == "" {
		options.Urgency = DefaultUrgency
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	return &CommandSink{options: options, run: runCommand}
}

// Available reports whether the configured command can be found on PATH.
func (sink *CommandSink) Available() bool {
	if sink == nil {
		return false
	}
	_, err := exec.LookPath(sink.options.Command)
	return err == nil
}

func (sink *CommandSink) Emit(ctx context.Context, event Event) error {
	if sink == nil || sink.run == nil {
		return ErrSinkUnavailable
	}
	output, err := sink.run(ctx, sink.options.Command, sink.args(event)...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("run %s: %w", sink.options.Command, err)
		}
		return fmt.Errorf("run %s: %w: %s", sink.options.Command, err, detail)
	}
	return nil
}

func (sink *CommandSink) args(event Event) []string {
	return []string{
		"--app-name=" + sink.options.AppName,
		"--urgency=" + sink.options.Urgency,
		"--expire-time=" + strconv.FormatInt(sink.options.Timeout.Milliseconds(), 10),
		"--",
		event.Message,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
