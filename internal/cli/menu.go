package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/menu"
)

func newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive catalog menu",
		Long: "Start the interactive menu on standard input and output. This is also\n" +
			"what runs when shelf is invoked without a subcommand.",
		Args: cobra.NoArgs,
		RunE: runMenu,
	}
}

func runMenu(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), appConfig.LogLevel)
	if err != nil {
		return err
	}

	cat, closeCatalog, err := openCatalog(appConfig, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	session := menu.New(cat, cmd.InOrStdin(), cmd.OutOrStdout(),
		menu.WithLogger(logger),
		menu.WithJSON(flags.jsonMode),
	)
	err = session.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		logger.Debug("menu interrupted")
		return nil
	}
	if err != nil {
		return sysError(err)
	}
	return nil
}
