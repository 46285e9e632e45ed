package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/shelf/internal/memory"
	"github.com/mesh-intelligence/shelf/internal/seed"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// openCatalog creates the backend named by cfg and fills it with the seed
// books. The caller must call the returned close function when done.
func openCatalog(cfg types.Config, logger *slog.Logger) (types.Catalog, func() error, error) {
	var (
		cat     types.Catalog
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case types.BackendSQLite:
		backend := sqlite.New()
		if err := backend.Attach(cfg); err != nil {
			return nil, nil, sysError(fmt.Errorf("attach sqlite catalog: %w", err))
		}
		cat, closeFn = backend, backend.Detach
	default:
		cat = memory.New()
	}

	books, err := seedBooks(cfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	n, err := seed.Into(cat, books)
	if err != nil {
		closeFn()
		return nil, nil, sysError(fmt.Errorf("seed catalog: %w", err))
	}

	logger.Debug("catalog opened", "backend", cfg.Backend, "seeded", n)
	return cat, closeFn, nil
}

// seedBooks returns the books a new catalog starts with: the seed file when
// configured, else the built-in samples when seeding is on, else none.
func seedBooks(cfg types.Config) ([]*types.Book, error) {
	if cfg.SeedFile != "" {
		books, err := seed.LoadJSONL(cfg.SeedFile)
		if err != nil {
			return nil, userError(fmt.Errorf("load seed file: %w", err))
		}
		return books, nil
	}
	if cfg.Seed {
		return seed.Default(), nil
	}
	return nil, nil
}

// newLogger returns a text logger writing to w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, userError(fmt.Errorf("invalid log level %q", level))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
