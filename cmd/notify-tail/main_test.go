package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"notifytail/internal/config"
	"notifytail/internal/notify"
	"notifytail/internal/watcher"
)

// syncBuffer is written by the watch loop while the test polls it.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

type fakeDesktop struct {
	notify.MemorySink
	available bool
	options   notify.CommandOptions
}

func (d *fakeDesktop) Available() bool {
	return d.available
}

func testDependencies() dependencies {
	deps := defaultDependencies()
	deps.newSource = func(_ string, batchSize int) (watcher.Source, error) {
		return watcher.NewFSNotifySource(batchSize)
	}
	return deps
}

func notifySettingsForTest(sink string) config.NotifySettings {
	return config.NotifySettings{
		Sink:      sink,
		Command:   "notify-send",
		AppName:   "notify-tail",
		Urgency:   "low",
		TimeoutMS: 10000,
	}
}

func TestRunHelpExitsSuccess(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runWithDependencies(context.Background(), []string{"--help"}, &stdout, &stderr, nil, testDependencies())
	if code != exitCodeSuccess {
		t.Fatalf("expected code %d, got %d", exitCodeSuccess, code)
	}
	if !strings.Contains(stderr.String(), "Usage: notify-tail") {
		t.Fatalf("expected usage output, got %q", stderr.String())
	}
}

func TestRunVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runWithDependencies(context.Background(), []string{"-v"}, &stdout, &stderr, nil, testDependencies())
	if code != exitCodeSuccess {
		t.Fatalf("expected code %d, got %d", exitCodeSuccess, code)
	}
	if !strings.HasPrefix(stdout.String(), "notify-tail") {
		t.Fatalf("expected version output, got %q", stdout.String())
	}
}

func TestRunRequiresFiles(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runWithDependencies(context.Background(), nil, &stdout, &stderr, nil, testDependencies())
	if code != exitCodeUsage {
		t.Fatalf("expected code %d, got %d", exitCodeUsage, code)
	}
	if !strings.Contains(stderr.String(), "at least one file is required") {
		t.Fatalf("expected missing file error, got %q", stderr.String())
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runWithDependencies(context.Background(), []string{"--follow", "a.log"}, &stdout, &stderr, nil, testDependencies())
	if code != exitCodeUsage {
		t.Fatalf("expected code %d, got %d", exitCodeUsage, code)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cases := [][]string{
		{"--buffer-size", "4", "a.log"},
		{"--charset", "no-such-charset", "a.log"},
		{"--set", "notify.sink=email", "a.log"},
	}

	for _, args := range cases {
		var stdout bytes.Buffer
		var stderr bytes.Buffer
		code := runWithDependencies(context.Background(), args, &stdout, &stderr, nil, testDependencies())
		if code != exitCodeConfig {
			t.Fatalf("%v: expected code %d, got %d (%s)", args, exitCodeConfig, code, stderr.String())
		}
		if !strings.Contains(stderr.String(), "config:") {
			t.Fatalf("%v: expected config error, got %q", args, stderr.String())
		}
	}
}

func TestRunSourceUnavailable(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	deps := testDependencies()
	deps.newSource = func(string, int) (watcher.Source, error) {
		return nil, errors.New("too many open files")
	}

	code := runWithDependencies(context.Background(), []string{"a.log"}, &stdout, &stderr, nil, deps)
	if code != exitCodeSource {
		t.Fatalf("expected code %d, got %d", exitCodeSource, code)
	}
	if !strings.Contains(stderr.String(), "too many open files") {
		t.Fatalf("expected source error, got %q", stderr.String())
	}
}

func TestBuildSinkFallsBackToStdout(t *testing.T) {
	desktop := &fakeDesktop{}
	deps := testDependencies()
	deps.newDesktop = func(options notify.CommandOptions) desktopSink {
		desktop.options = options
		return desktop
	}
	settings := notifySettingsForTest("desktop")
	var stdout bytes.Buffer

	sink := buildSink(settings, &stdout, nil, deps)
	if _, ok := sink.(*notify.WriterSink); !ok {
		t.Fatalf("expected writer sink fallback, got %T", sink)
	}
	if desktop.options.Timeout != 10*time.Second || desktop.options.Urgency != "low" {
		t.Fatalf("unexpected desktop options %+v", desktop.options)
	}

	desktop.available = true
	if sink := buildSink(settings, &stdout, nil, deps); sink != desktopSink(desktop) {
		t.Fatalf("expected desktop sink, got %T", sink)
	}
	if sink := buildSink(notifySettingsForTest("stdout"), &stdout, nil, deps); sink == desktopSink(desktop) {
		t.Fatalf("expected stdout sink when configured")
	}
}

func TestRunFollowsFileUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	done := make(chan int, 1)
	go func() {
		done <- runWithDependencies(ctx, []string{"--sink", "stdout", "--metrics", path, path}, stdout, stderr, signals, testDependencies())
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stdout.String(), "new line") && time.Now().Before(deadline) {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		_, _ = file.WriteString("new line\n")
		_ = file.Close()
		time.Sleep(50 * time.Millisecond)
	}

	signals <- os.Interrupt
	select {
	case code := <-done:
		if code != exitCodeSuccess {
			t.Fatalf("expected code %d, got %d (%s)", exitCodeSuccess, code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run to stop")
	}

	output := stdout.String()
	if !strings.Contains(output, path+": new line") {
		t.Fatalf("expected appended line on stdout, got %q", output)
	}
	if strings.Contains(output, "old") {
		t.Fatalf("expected existing content to be skipped, got %q", output)
	}
	logs := stderr.String()
	if !strings.Contains(logs, "path already registered") {
		t.Fatalf("expected duplicate warning, got %q", logs)
	}
	if !strings.Contains(logs, "notify_tail_lines_emitted_total") {
		t.Fatalf("expected metrics on stderr, got %q", logs)
	}
}
