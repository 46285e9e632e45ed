package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Compile-time interface check: Catalog must implement types.Catalog.
var _ types.Catalog = (*Catalog)(nil)

const bookColumns = "book_id, title, author, isbn, year, price, available"

// Sort keys accepted by sortBy.
const (
	sortTitle  = "title"
	sortAuthor = "author"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateBook reads one row selected with bookColumns. Columns selected
// before bookColumns are scanned into lead.
func hydrateBook(row scanner, lead ...any) (*types.Book, error) {
	var (
		b     types.Book
		price sql.NullFloat64
	)
	dest := append(lead, &b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Year, &price, &b.Available)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	b.Price = price.Float64
	if !price.Valid {
		b.Price = math.NaN()
	}
	return &b, nil
}

// Add appends book after the current last position.
func (c *Catalog) Add(book *types.Book) error {
	if err := c.checkAttached(); err != nil {
		return err
	}
	if book == nil {
		return types.ErrInvalidData
	}

	n, err := c.Count()
	if err != nil {
		return err
	}
	if n >= types.MaxBooks {
		return types.ErrCatalogFull
	}

	if book.BookID == "" {
		id, err := types.NewBookID()
		if err != nil {
			return err
		}
		book.BookID = id
	}

	_, err = c.db.Exec(
		`INSERT INTO books (book_id, position, title, author, isbn, year, price, available)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM books), ?, ?, ?, ?, ?, ?)`,
		book.BookID, book.Title, book.Author, book.ISBN, book.Year, book.Price, boolToInt(book.Available),
	)
	if err != nil {
		return fmt.Errorf("inserting book %s: %w", book.BookID, err)
	}
	return nil
}

// Remove deletes the first book with the given ISBN.
func (c *Catalog) Remove(isbn string) error {
	if err := c.checkAttached(); err != nil {
		return err
	}

	res, err := c.db.Exec(
		`DELETE FROM books WHERE rowid =
		 (SELECT rowid FROM books WHERE isbn = ? ORDER BY position LIMIT 1)`,
		isbn,
	)
	if err != nil {
		return fmt.Errorf("deleting book %q: %w", isbn, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting book %q: %w", isbn, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// FindByISBN returns a copy of the first book with the given ISBN.
func (c *Catalog) FindByISBN(isbn string) (*types.Book, error) {
	if err := c.checkAttached(); err != nil {
		return nil, err
	}
	row := c.db.QueryRow(
		"SELECT "+bookColumns+" FROM books WHERE isbn = ? ORDER BY position LIMIT 1",
		isbn,
	)
	return c.findOne(row, isbn)
}

// FindByTitle returns a copy of the first book whose title contains substr.
// instr compares code points exactly, so matching is case-sensitive.
func (c *Catalog) FindByTitle(substr string) (*types.Book, error) {
	if err := c.checkAttached(); err != nil {
		return nil, err
	}
	var row *sql.Row
	if substr == "" {
		row = c.db.QueryRow("SELECT " + bookColumns + " FROM books ORDER BY position LIMIT 1")
	} else {
		row = c.db.QueryRow(
			"SELECT "+bookColumns+" FROM books WHERE instr(title, ?) > 0 ORDER BY position LIMIT 1",
			substr,
		)
	}
	return c.findOne(row, substr)
}

func (c *Catalog) findOne(row *sql.Row, key string) (*types.Book, error) {
	b, err := hydrateBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting book %q: %w", key, err)
	}
	return b, nil
}

// List returns copies of all books in current order.
func (c *Catalog) List() ([]*types.Book, error) {
	if err := c.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := c.db.Query("SELECT " + bookColumns + " FROM books ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	books := []*types.Book{}
	for rows.Next() {
		b, err := hydrateBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return books, nil
}

// Borrow marks the first book with the given ISBN as unavailable.
func (c *Catalog) Borrow(isbn string) error {
	return c.mutate(isbn, func(b *types.Book) error {
		if !b.IsAvailable() {
			return types.ErrAlreadyBorrowed
		}
		b.SetAvailability(false)
		return nil
	})
}

// Return marks the first book with the given ISBN as available.
func (c *Catalog) Return(isbn string) error {
	return c.mutate(isbn, func(b *types.Book) error {
		if b.IsAvailable() {
			return types.ErrNotBorrowed
		}
		b.SetAvailability(true)
		return nil
	})
}

// UpdatePrice sets the price of the first book with the given ISBN.
func (c *Catalog) UpdatePrice(isbn string, price float64) error {
	return c.mutate(isbn, func(b *types.Book) error {
		return b.UpdatePrice(price)
	})
}

// UpdateYear sets the publication year of the first book with the given ISBN.
func (c *Catalog) UpdateYear(isbn string, year int) error {
	return c.mutate(isbn, func(b *types.Book) error {
		return b.UpdateYear(year)
	})
}

// mutate loads the first book with the given ISBN, applies fn, and writes the
// mutable fields back in one transaction. Nothing is written if fn fails.
func (c *Catalog) mutate(isbn string, fn func(*types.Book) error) error {
	if err := c.checkAttached(); err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var rowID int64
	b, err := hydrateBook(tx.QueryRow(
		"SELECT rowid, "+bookColumns+" FROM books WHERE isbn = ? ORDER BY position LIMIT 1",
		isbn,
	), &rowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		return fmt.Errorf("getting book %q: %w", isbn, err)
	}

	if err := fn(b); err != nil {
		return err
	}

	_, err = tx.Exec(
		"UPDATE books SET year = ?, price = ?, available = ? WHERE rowid = ?",
		b.Year, b.Price, boolToInt(b.Available), rowID,
	)
	if err != nil {
		return fmt.Errorf("updating book %q: %w", isbn, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing book %q: %w", isbn, err)
	}
	return nil
}

// Count returns the number of books held.
func (c *Catalog) Count() (int, error) {
	if err := c.checkAttached(); err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM books").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return n, nil
}

// SortByTitle stably orders books by title.
func (c *Catalog) SortByTitle() error {
	return c.sortBy(sortTitle)
}

// SortByAuthor stably orders books by author.
func (c *Catalog) SortByAuthor() error {
	return c.sortBy(sortAuthor)
}

// sortBy rewrites positions as 1..n in key order. The default BINARY
// collation compares bytes, and ties fall back to the old position, which
// makes the sort stable.
func (c *Catalog) sortBy(key string) error {
	if err := c.checkAttached(); err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT rowid FROM books ORDER BY " + key + ", position")
	if err != nil {
		return fmt.Errorf("sorting by %s: %w", key, err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sorting by %s: %w", key, err)
	}

	stmt, err := tx.Prepare("UPDATE books SET position = ? WHERE rowid = ?")
	if err != nil {
		return fmt.Errorf("preparing position update: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i+1, id); err != nil {
			return fmt.Errorf("updating position of row %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sort: %w", err)
	}
	return nil
}
