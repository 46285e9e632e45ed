package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend  string `yaml:"backend"`
	Seed     bool   `yaml:"seed"`
	SeedFile string `yaml:"seed_file,omitempty"`
	LogLevel string `yaml:"log_level"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  "Create the configuration directory and a default config.yaml if one does not exist.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := resolveConfigDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	backend := types.BackendMemory
	if flags.backend != "" {
		backend = flags.backend
	}
	if err := (types.Config{Backend: backend}).Validate(); err != nil {
		return userError(fmt.Errorf("backend %q: %w", backend, err))
	}

	path := filepath.Join(configDir, configFileExt)
	written, err := writeConfigIfMissing(path, backend)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	if written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
	}
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(path, backend string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := configFile{
		Backend:  backend,
		Seed:     true,
		LogLevel: defaultLogLevel,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
