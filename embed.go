package notifytail

import _ "embed"

// DefaultConfig holds the built-in settings loaded before any user file.
//
//go:embed config/defaults.toml
var DefaultConfig []byte
