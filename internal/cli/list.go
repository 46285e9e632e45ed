package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/render"
)

// Accepted values for list --sort.
const (
	sortNone   = ""
	sortTitle  = "title"
	sortAuthor = "author"
)

func newListCmd() *cobra.Command {
	var sortKey string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the starting catalog and exit",
		Long: `List opens a fresh catalog, fills it from the configured seed, and prints it.

Example:
  shelf list
  shelf list --sort author
  shelf list --json --backend sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch sortKey {
			case sortNone, sortTitle, sortAuthor:
			default:
				return userError(fmt.Errorf("invalid sort key %q (valid: %s, %s)", sortKey, sortTitle, sortAuthor))
			}

			logger, err := newLogger(cmd.ErrOrStderr(), appConfig.LogLevel)
			if err != nil {
				return err
			}
			cat, closeCatalog, err := openCatalog(appConfig, logger)
			if err != nil {
				return err
			}
			defer closeCatalog()

			switch sortKey {
			case sortTitle:
				err = cat.SortByTitle()
			case sortAuthor:
				err = cat.SortByAuthor()
			}
			if err != nil {
				return sysError(fmt.Errorf("sort: %w", err))
			}

			books, err := cat.List()
			if err != nil {
				return sysError(fmt.Errorf("list: %w", err))
			}
			if flags.jsonMode {
				return render.JSON(cmd.OutOrStdout(), books)
			}
			render.NewPrinter(cmd.OutOrStdout()).List(books)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort order before printing: title or author")
	return cmd
}
