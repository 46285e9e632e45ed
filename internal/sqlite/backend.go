// Package sqlite implements a Catalog backed by a private in-memory SQLite
// database. Nothing is written to disk; the database lives until Detach.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// dsn opens a database private to this process and connection.
const dsn = ":memory:"

// Catalog implements types.Catalog on SQLite. Lookups return hydrated copies,
// so changes to a returned book are not seen by the catalog; use the
// catalog's own mutating methods instead.
type Catalog struct {
	attached bool
	db       *sql.DB
}

// New creates a detached catalog. Call Attach before use.
func New() *Catalog {
	return &Catalog{}
}

// Attach opens the in-memory database and creates the schema.
// Returns ErrAlreadyAttached if already attached.
func (c *Catalog) Attach(config types.Config) error {
	if c.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	// Every connection to ":memory:" gets its own database, so the pool is
	// pinned to a single connection.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	c.db = db
	c.attached = true
	return nil
}

// Detach closes the database, discarding every book. After Detach all
// operations return ErrCatalogDetached. Detach is idempotent.
func (c *Catalog) Detach() error {
	if !c.attached {
		return nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return err
		}
		c.db = nil
	}
	c.attached = false
	return nil
}

func (c *Catalog) checkAttached() error {
	if !c.attached {
		return types.ErrCatalogDetached
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
