package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notifytail"
	"notifytail/internal/charset"
	"notifytail/internal/config"
	"notifytail/internal/logging"
	"notifytail/internal/metrics"
	"notifytail/internal/notify"
	"notifytail/internal/version"
	"notifytail/internal/watcher"
)

const programName = "notify-tail"

// desktopSink is the part of notify.CommandSink the CLI relies on.
type desktopSink interface {
	notify.Sink
	Available() bool
}

type dependencies struct {
	newSource  func(backend string, batchSize int) (watcher.Source, error)
	newDesktop func(options notify.CommandOptions) desktopSink
}

func defaultDependencies() dependencies {
	return dependencies{
		newSource: watcher.NewSource,
		newDesktop: func(options notify.CommandOptions) desktopSink {
			return notify.NewCommandSink(options)
		},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopSignals)

	return runWithDependencies(context.Background(), args, out, errOut, stopSignals, defaultDependencies())
}

func runWithDependencies(ctx context.Context, args []string, out io.Writer, errOut io.Writer, signals <-chan os.Signal, deps dependencies) int {
	cfg, err := parseArgs(args, errOut)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitCodeSuccess
		}
		var typed *cliError
		if errors.As(err, &typed) {
			return handleCLIError(err, errOut)
		}
		return exitCodeUsage
	}
	if cfg.ShowVersion {
		fmt.Fprintln(out, version.GetVersionInfo().Line(programName))
		return exitCodeSuccess
	}

	settings, err := config.LoadSettings(config.ResolvePath(cfg.ConfigPath), notifytail.DefaultConfig, cfg.Overrides)
	if err != nil {
		return handleCLIError(cliErrf(exitCodeConfig, "config: %v", err), errOut)
	}
	level, _ := logging.ParseLevel(settings.Log.Level)
	logger := logging.NewLoggerWithOutput(nil, level, errOut)

	decoder, err := charset.New(settings.Text.Charset)
	if err != nil {
		return handleCLIError(cliErrf(exitCodeConfig, "config: %v", err), errOut)
	}

	source, err := deps.newSource(settings.Source.Backend, int(settings.Source.BatchSize))
	if err != nil {
		return handleCLIError(cliErrf(exitCodeSource, "cannot watch files: %v", err), errOut)
	}

	counters := metrics.NewRegistry()
	tail, err := watcher.New(watcher.Options{
		Source:     source,
		Sink:       buildSink(settings.Notify, out, logger, deps),
		Decoder:    decoder,
		Logger:     logger,
		Metrics:    counters,
		BufferSize: int(settings.Tail.BufferSize),
	})
	if err != nil {
		_ = source.Close()
		return handleCLIError(err, errOut)
	}
	defer func() {
		if err := tail.Close(); err != nil {
			logger.Warn("close watcher", map[string]string{"error": err.Error()})
		}
	}()

	for _, path := range cfg.Files {
		if _, err := tail.RegisterFile(path); err != nil {
			logger.Warn("skipping file", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
	logger.Info("notify-tail started", map[string]string{
		"files":   fmt.Sprint(len(cfg.Files)),
		"charset": decoder.Name(),
		"version": version.Version,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopWatching := watchShutdownSignals(logger, cancel, signals)
	defer stopWatching()

	runErr := tail.Run(runCtx)

	if cfg.ShowMetrics {
		if err := counters.WritePrometheus(errOut); err != nil {
			logger.Warn("write metrics", map[string]string{"error": err.Error()})
		}
	}
	if runErr != nil {
		logger.Error("watching stopped", map[string]string{"error": runErr.Error()})
		return handleCLIError(cliErrf(exitCodeRuntime, "notify-tail: %v", runErr), errOut)
	}
	return exitCodeSuccess
}

// buildSink prefers desktop notifications and falls back to out when the
// notification command is missing.
func buildSink(settings config.NotifySettings, out io.Writer, logger *logging.Logger, deps dependencies) notify.Sink {
	if settings.Sink == "stdout" {
		return notify.NewWriterSink(out)
	}
	desktop := deps.newDesktop(notify.CommandOptions{
		Command: settings.Command,
		AppName: settings.AppName,
		Urgency: settings.Urgency,
		Timeout: time.Duration(settings.TimeoutMS) * time.Millisecond,
	})
	if !desktop.Available() {
		logger.Warn("notification command not found, printing to stdout", map[string]string{
			"command": settings.Command,
		})
		return notify.NewWriterSink(out)
	}
	return desktop
}
