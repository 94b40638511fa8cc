// Package config merges embedded defaults, an optional user file and
// command-line overrides into Settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"notifytail/internal/config/tomlkeys"
	"notifytail/internal/logging"
)

// EnvConfigPath names the environment variable consulted when no config
// path is given on the command line.
const EnvConfigPath = "NOTIFY_TAIL_CONFIG"

const MinBufferSize = 16

var ErrInvalidSetting = errors.New("invalid setting")

type Settings struct {
	Tail   TailSettings
	Source SourceSettings
	Notify NotifySettings
	Text   TextSettings
	Log    LogSettings
}

type TailSettings struct {
	BufferSize int64
}

type SourceSettings struct {
	Backend   string
	BatchSize int64
}

type NotifySettings struct {
	Sink      string
	Command   string
	AppName   string
	Urgency   string
	TimeoutMS int64
}

type TextSettings struct {
	Charset string
}

type LogSettings struct {
	Level string
}

// ResolvePath prefers an explicit path and falls back to NOTIFY_TAIL_CONFIG.
func ResolvePath(flagPath string) string {
	if path := strings.TrimSpace(flagPath); path != "" {
		return path
	}
	return strings.TrimSpace(os.Getenv(EnvConfigPath))
}

// LoadSettings layers defaults, the file at path (TOML, or YAML for .yaml
// and .yml) and overrides, in that order. A missing file is not an error.
func LoadSettings(path string, defaultsPayload []byte, overrides map[string]any) (Settings, error) {
	defaultsStore, err := tomlkeys.Decode(defaultsPayload)
	if err != nil {
		return Settings{}, fmt.Errorf("decode defaults: %w", err)
	}
	defaults := defaultsStore.Flat()
	values := defaultsStore.Flat()

	if strings.TrimSpace(path) != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Settings{}, err
			}
		} else {
			store, err := decodeFile(path, payload)
			if err != nil {
				return Settings{}, fmt.Errorf("decode %s: %w", path, err)
			}
			for key, value := range store.Flat() {
				values[key] = value
			}
		}
	}

	for key, value := range overrides {
		normalized := tomlkeys.NormalizeKey(key)
		if normalized == "" {
			continue
		}
		values[normalized] = value
	}

	settings := Settings{}

	settings.Tail.BufferSize = intSetting(values, "tail.buffer-size", 0)
	settings.Source.Backend = strings.ToLower(stringSetting(values, "source.backend", ""))
	settings.Source.BatchSize = intSetting(values, "source.batch-size", 0)
	settings.Notify.Sink = strings.ToLower(stringSetting(values, "notify.sink", ""))
	settings.Notify.Command = stringSetting(values, "notify.command", "")
	settings.Notify.AppName = stringSetting(values, "notify.app-name", "")
	settings.Notify.Urgency = strings.ToLower(stringSetting(values, "notify.urgency", ""))
	settings.Notify.TimeoutMS = intSetting(values, "notify.timeout-ms", -1)
	settings.Text.Charset = stringSetting(values, "text.charset", "")
	settings.Log.Level = strings.ToLower(stringSetting(values, "log.level", ""))

	settings = normalizeSettings(settings, defaults)
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func decodeFile(path string, payload []byte) (tomlkeys.Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return tomlkeys.DecodeYAML(payload)
	default:
		return tomlkeys.Decode(payload)
	}
}

func normalizeSettings(settings Settings, defaults map[string]any) Settings {
	if settings.Tail.BufferSize <= 0 {
		settings.Tail.BufferSize = intSetting(defaults, "tail.buffer-size", 0)
	}
	if settings.Source.Backend == "" {
		settings.Source.Backend = stringSetting(defaults, "source.backend", "")
	}
	if settings.Source.BatchSize <= 0 {
		settings.Source.BatchSize = intSetting(defaults, "source.batch-size", 0)
	}
	if settings.Notify.Sink == "" {
		settings.Notify.Sink = stringSetting(defaults, "notify.sink", "")
	}
	if settings.Notify.Command == "" {
		settings.Notify.Command = stringSetting(defaults, "notify.command", "")
	}
	if settings.Notify.AppName == "" {
		settings.Notify.AppName = stringSetting(defaults, "notify.app-name", "")
	}
	if settings.Notify.Urgency == "" {
		settings.Notify.Urgency = stringSetting(defaults, "notify.urgency", "")
	}
	if settings.Notify.TimeoutMS < 0 {
		settings.Notify.TimeoutMS = intSetting(defaults, "notify.timeout-ms", 0)
	}
	if settings.Text.Charset == "" {
		settings.Text.Charset = stringSetting(defaults, "text.charset", "")
	}
	if settings.Log.Level == "" {
		settings.Log.Level = stringSetting(defaults, "log.level", "")
	}
	return settings
}

// Validate rejects values the rest of the program cannot work with.
func (s Settings) Validate() error {
	var errs []error
	if s.Tail.BufferSize < MinBufferSize {
		errs = append(errs, fmt.Errorf("%w: tail.buffer-size must be at least %d, got %d", ErrInvalidSetting, MinBufferSize, s.Tail.BufferSize))
	}
	switch s.Source.Backend {
	case "auto", "inotify", "fsnotify":
	default:
		errs = append(errs, fmt.Errorf("%w: source.backend must be auto, inotify or fsnotify, got %q", ErrInvalidSetting, s.Source.Backend))
	}
	switch s.Notify.Sink {
	case "desktop", "stdout":
	default:
		errs = append(errs, fmt.Errorf("%w: notify.sink must be desktop or stdout, got %q", ErrInvalidSetting, s.Notify.Sink))
	}
	switch s.Notify.Urgency {
	case "low", "normal", "critical":
	default:
		errs = append(errs, fmt.Errorf("%w: notify.urgency must be low, normal or critical, got %q", ErrInvalidSetting, s.Notify.Urgency))
	}
	if _, ok := logging.ParseLevel(s.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("%w: log.level %q is not a level", ErrInvalidSetting, s.Log.Level))
	}
	return errors.Join(errs...)
}

func intSetting(values map[string]any, key string, fallback int64) int64 {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := asInt64(value); ok {
		return parsed
	}
	return fallback
}

func stringSetting(values map[string]any, key string, fallback string) string {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := value.(string); ok {
		return strings.TrimSpace(parsed)
	}
	return fallback
}

func asInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case uint64:
		return int64(typed), true
	case uint:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint8:
		return int64(typed), true
	case float64:
		if typed == float64(int64(typed)) {
			return int64(typed), true
		}
	case float32:
		if typed == float32(int64(typed)) {
			return int64(typed), true
		}
	}
	return 0, false
}
