package logging

import "time"

// Level orders log entries; entries below a logger's minimum are dropped.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type LogEntry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Context   map[string]string
}
