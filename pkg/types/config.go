package types

import "errors"

// Config selects and parameterizes a catalog backend.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	Seed     bool   `json:"seed" yaml:"seed"`
	SeedFile string `json:"seed_file" yaml:"seed_file,omitempty"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
