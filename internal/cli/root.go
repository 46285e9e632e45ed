// Package cli implements the shelf command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	backend   string
	logLevel  string
	jsonMode  bool
}

var flags rootFlags

// appConfig is loaded by PersistentPreRunE for commands that need a catalog.
var appConfig types.Config

// NewRootCmd creates the top-level "shelf" command with global flags and all
// subcommands registered. Running it without a subcommand starts the menu.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shelf",
		Short: "An in-memory book catalog with a console menu",
		Long: "Shelf keeps a catalog of books in memory for the length of a session.\n" +
			"Books can be added, removed, found, borrowed, returned and sorted.\n" +
			"Nothing is saved when the session ends.",
		Args: cobra.NoArgs,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadAppConfig,
		RunE:              runMenu,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/shelf)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "catalog backend: memory or sqlite")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output books in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newMenuCmd())
	root.AddCommand(newListCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shelf:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// loadAppConfig resolves and loads configuration before commands that open
// a catalog.
func loadAppConfig(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "init":
		return nil
	}

	configDir, err := resolveConfigDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	cfg, err := loadConfig(cmd, configDir)
	if err != nil {
		return err
	}
	appConfig = cfg
	return nil
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Errors without an explicit code,
// such as cobra flag parsing failures, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
