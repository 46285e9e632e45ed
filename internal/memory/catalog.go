// Package memory implements the default Catalog backend: a plain slice of
// books held in process memory.
package memory

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Compile-time interface check: Catalog must implement types.Catalog.
var _ types.Catalog = (*Catalog)(nil)

// Catalog stores books in a slice in current order. All lookups are linear
// scans. Books returned by lookups are the stored values; they stay valid
// only until the next mutating call.
type Catalog struct {
	books []*types.Book
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Add appends book at the end, assigning a BookID when empty.
func (c *Catalog) Add(book *types.Book) error {
	if book == nil {
		return types.ErrInvalidData
	}
	if len(c.books) >= types.MaxBooks {
		return types.ErrCatalogFull
	}
	if book.BookID == "" {
		id, err := types.NewBookID()
		if err != nil {
			return err
		}
		book.BookID = id
	}
	c.books = append(c.books, book)
	return nil
}

// Remove deletes the first book with the given ISBN.
func (c *Catalog) Remove(isbn string) error {
	i := c.indexISBN(isbn)
	if i < 0 {
		return types.ErrNotFound
	}
	c.books = slices.Delete(c.books, i, i+1)
	return nil
}

// FindByISBN returns the first book with the given ISBN.
func (c *Catalog) FindByISBN(isbn string) (*types.Book, error) {
	i := c.indexISBN(isbn)
	if i < 0 {
		return nil, types.ErrNotFound
	}
	return c.books[i], nil
}

// FindByTitle returns the first book whose title contains substr.
func (c *Catalog) FindByTitle(substr string) (*types.Book, error) {
	for _, b := range c.books {
		if strings.Contains(b.Title, substr) {
			return b, nil
		}
	}
	return nil, types.ErrNotFound
}

// List returns the books in current order. The slice is a copy; the books
// are not.
func (c *Catalog) List() ([]*types.Book, error) {
	return slices.Clone(c.books), nil
}

// Borrow marks the first book with the given ISBN as unavailable.
func (c *Catalog) Borrow(isbn string) error {
	b, err := c.FindByISBN(isbn)
	if err != nil {
		return err
	}
	if !b.IsAvailable() {
		return types.ErrAlreadyBorrowed
	}
	b.SetAvailability(false)
	return nil
}

// Return marks the first book with the given ISBN as available.
func (c *Catalog) Return(isbn string) error {
	b, err := c.FindByISBN(isbn)
	if err != nil {
		return err
	}
	if b.IsAvailable() {
		return types.ErrNotBorrowed
	}
	b.SetAvailability(true)
	return nil
}

// UpdatePrice sets the price of the first book with the given ISBN.
func (c *Catalog) UpdatePrice(isbn string, price float64) error {
	b, err := c.FindByISBN(isbn)
	if err != nil {
		return err
	}
	return b.UpdatePrice(price)
}

// UpdateYear sets the publication year of the first book with the given ISBN.
func (c *Catalog) UpdateYear(isbn string, year int) error {
	b, err := c.FindByISBN(isbn)
	if err != nil {
		return err
	}
	return b.UpdateYear(year)
}

// Count returns the number of books held.
func (c *Catalog) Count() (int, error) {
	return len(c.books), nil
}

// SortByTitle stably orders books by title.
func (c *Catalog) SortByTitle() error {
	slices.SortStableFunc(c.books, func(a, b *types.Book) int {
		return strings.Compare(a.Title, b.Title)
	})
	return nil
}

// SortByAuthor stably orders books by author.
func (c *Catalog) SortByAuthor() error {
	slices.SortStableFunc(c.books, func(a, b *types.Book) int {
		return strings.Compare(a.Author, b.Author)
	})
	return nil
}

func (c *Catalog) indexISBN(isbn string) int {
	return slices.IndexFunc(c.books, func(b *types.Book) bool {
		return b.ISBN == isbn
	})
}
