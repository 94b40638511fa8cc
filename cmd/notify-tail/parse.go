package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"notifytail/internal/cli"
)

type Config struct {
	ConfigPath  string
	Overrides   map[string]any
	Files       []string
	ShowMetrics bool
	ShowVersion bool
}

func parseArgs(args []string, errOut io.Writer) (Config, error) {
	fs := flag.NewFlagSet("notify-tail", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configFlag := fs.String("config", "", "Config file, TOML or YAML (env: NOTIFY_TAIL_CONFIG)")
	backendFlag := fs.String("backend", "", "Change source: auto, inotify or fsnotify")
	bufferSizeFlag := fs.Int("buffer-size", 0, "Line buffer capacity in bytes")
	charsetFlag := fs.String("charset", "", "Encoding of the watched files")
	sinkFlag := fs.String("sink", "", "Where lines go: desktop or stdout")
	logLevelFlag := fs.String("log-level", "", "Log level: debug, info, warning or error")
	metricsFlag := fs.Bool("metrics", false, "Write counters to stderr on exit")
	var sets overrideList
	fs.Var(&sets, "set", "Config override key=value (repeatable)")
	helpVersion := cli.AddHelpVersionFlags(fs, "Show this help message", "Print version and exit")
	fs.Usage = func() {
		printHelp(fs.Output())
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if helpVersion.Help {
		fs.Usage()
		return Config{}, flag.ErrHelp
	}

	if helpVersion.Version {
		return Config{ShowVersion: true}, nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return Config{}, cliErr(exitCodeUsage, "at least one file is required")
	}

	envOverrides, err := parseConfigOverridesEnv(os.Getenv(envConfigOverrides))
	if err != nil {
		return Config{}, cliErrf(exitCodeUsage, "%s: %v", envConfigOverrides, err)
	}
	setOverrides, err := parseConfigOverrides(sets)
	if err != nil {
		return Config{}, cliErr(exitCodeUsage, err.Error())
	}

	explicit := cli.ExplicitFlags(fs)
	flagOverrides := map[string]any{}
	if explicit["backend"] {
		flagOverrides["source.backend"] = strings.TrimSpace(*backendFlag)
	}
	if explicit["buffer-size"] {
		flagOverrides["tail.buffer-size"] = int64(*bufferSizeFlag)
	}
	if explicit["charset"] {
		flagOverrides["text.charset"] = strings.TrimSpace(*charsetFlag)
	}
	if explicit["sink"] {
		flagOverrides["notify.sink"] = strings.TrimSpace(*sinkFlag)
	}
	if explicit["log-level"] {
		flagOverrides["log.level"] = strings.TrimSpace(*logLevelFlag)
	}

	return Config{
		ConfigPath:  strings.TrimSpace(*configFlag),
		Overrides:   mergeOverrides(envOverrides, setOverrides, flagOverrides),
		Files:       fs.Args(),
		ShowMetrics: *metricsFlag,
	}, nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: notify-tail [options] FILE...")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Show every line appended to FILE as a desktop notification. Files may")
	fmt.Fprintln(out, "be missing, truncated or replaced while notify-tail runs.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	cli.WriteOption(out, "--config PATH", "Config file, TOML or YAML (env: NOTIFY_TAIL_CONFIG)")
	cli.WriteOption(out, "--backend NAME", "Change source: auto, inotify or fsnotify (default: auto)")
	cli.WriteOption(out, "--buffer-size BYTES", "Line buffer capacity (default: 4096)")
	cli.WriteOption(out, "--charset LABEL", "Encoding of the watched files (default: utf-8)")
	cli.WriteOption(out, "--sink NAME", "desktop or stdout (default: desktop)")
	cli.WriteOption(out, "--log-level LEVEL", "debug, info, warning or error (default: info)")
	cli.WriteOption(out, "--set KEY=VALUE", "Config override, repeatable (env: NOTIFY_TAIL_OVERRIDES)")
	cli.WriteOption(out, "--metrics", "Write counters to stderr on exit")
	cli.WriteOption(out, "--help", "Show this help message")
	cli.WriteOption(out, "--version", "Print version and exit")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  notify-tail /var/log/syslog")
	fmt.Fprintln(out, "  notify-tail --sink stdout --set notify.urgency=normal app.log worker.log")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Exit codes:")
	fmt.Fprintln(out, "  0  Success")
	fmt.Fprintln(out, "  1  Usage error")
	fmt.Fprintln(out, "  2  Invalid configuration")
	fmt.Fprintln(out, "  3  Change notification unavailable")
	fmt.Fprintln(out, "  4  Runtime failure")
}
