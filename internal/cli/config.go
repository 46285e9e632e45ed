package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envFileName    = ".env"
	envPrefix      = "SHELF"

	// Config keys.
	cfgKeyBackend  = "backend"
	cfgKeySeed     = "seed"
	cfgKeySeedFile = "seed_file"
	cfgKeyLogLevel = "log_level"

	defaultLogLevel = "warn"
)

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > SHELF_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flags.configDir)
}

// loadConfig builds the effective Config. Precedence per key is: flag >
// SHELF_* environment (including a .env file in configDir) > config.yaml >
// built-in default. A missing config.yaml or .env is not an error.
func loadConfig(cmd *cobra.Command, configDir string) (types.Config, error) {
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(filepath.Join(configDir, envFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return types.Config{}, userError(fmt.Errorf("read %s: %w", envFileName, err))
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendMemory)
	v.SetDefault(cfgKeySeed, true)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	pf := cmd.Root().PersistentFlags()
	if err := v.BindPFlag(cfgKeyBackend, pf.Lookup("backend")); err != nil {
		return types.Config{}, sysError(fmt.Errorf("bind flag: %w", err))
	}
	if err := v.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level")); err != nil {
		return types.Config{}, sysError(fmt.Errorf("bind flag: %w", err))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, userError(fmt.Errorf("read config: %w", err))
		}
	}

	cfg := types.Config{
		Backend:  v.GetString(cfgKeyBackend),
		Seed:     v.GetBool(cfgKeySeed),
		SeedFile: paths.ResolveFile(configDir, v.GetString(cfgKeySeedFile)),
		LogLevel: v.GetString(cfgKeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError(fmt.Errorf("config %s=%q: %w", cfgKeyBackend, cfg.Backend, err))
	}
	return cfg, nil
}
