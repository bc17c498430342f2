// Package session implements the FIX session engine (spec.md §4.7-§4.11,
// §5): state machine, sequence store, and the actor wiring that glues
// reader/writer/application adapters together.
package session

import "time"

// Config is a single session's configuration record (spec.md §6.2), plus
// the optional Username/Password credential extension from SPEC_FULL.md
// §4.7a — standard FIX 4.4 practice the Rust original's TOML config never
// modeled, but not excluded by any Non-goal.
type Config struct {
	BeginString  string
	SenderCompID string
	TargetCompID string

	ConnectionHost string
	ConnectionPort uint16

	HeartbeatInterval time.Duration
	ReconnectInterval time.Duration // default 30s
	ResetOnLogon      bool

	TLSCACertPath      string // presence => TLS
	DataDictionaryPath string

	// Username/Password are optional; when Password is set it is held only
	// in its encrypted form at rest (session/secrets.go) and decrypted just
	// before building the outbound Logon.
	Username string
	Password string
}

// DefaultReconnectInterval matches spec.md §6.2's stated default.
const DefaultReconnectInterval = 30 * time.Second

// WithDefaults fills in zero-valued fields that have a specified default.
func (c Config) WithDefaults() Config {
	if c.ReconnectInterval == 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	return c
}
