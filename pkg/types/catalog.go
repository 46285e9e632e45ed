package types

import "errors"

// MaxBooks is the fixed capacity of a catalog.
const MaxBooks = 1000

// Catalog is an ordered, capacity-bounded collection of books.
//
// Order is insertion order until one of the sort methods rearranges it.
// Every lookup scans in current order and returns the first match, so
// duplicate ISBNs are allowed and the earliest one wins.
type Catalog interface {
	// Add appends book at the end. A UUID v7 is assigned to BookID when it
	// is empty. Returns ErrCatalogFull if the catalog already holds
	// MaxBooks books, and ErrInvalidData for a nil book.
	Add(book *Book) error

	// Remove deletes the first book whose ISBN equals isbn, preserving the
	// order of the rest. Returns ErrNotFound on a miss.
	Remove(isbn string) error

	// FindByISBN returns the first book whose ISBN equals isbn.
	// Returns ErrNotFound on a miss.
	FindByISBN(isbn string) (*Book, error)

	// FindByTitle returns the first book whose title contains substr.
	// Matching is case-sensitive. Returns ErrNotFound on a miss.
	FindByTitle(substr string) (*Book, error)

	// List returns the books in current order.
	List() ([]*Book, error)

	// Borrow marks the first book with the given ISBN as unavailable.
	// Returns ErrNotFound on a miss and ErrAlreadyBorrowed if the book is
	// already unavailable.
	Borrow(isbn string) error

	// Return marks the first book with the given ISBN as available again.
	// Returns ErrNotFound on a miss and ErrNotBorrowed if the book is
	// already available.
	Return(isbn string) error

	// UpdatePrice applies Book.UpdatePrice to the first book with the given ISBN.
	UpdatePrice(isbn string, price float64) error

	// UpdateYear applies Book.UpdateYear to the first book with the given ISBN.
	UpdateYear(isbn string, year int) error

	// Count returns the number of books held.
	Count() (int, error)

	// SortByTitle orders books by title. The sort is stable and compares
	// titles byte-wise.
	SortByTitle() error

	// SortByAuthor orders books by author. The sort is stable and compares
	// authors byte-wise.
	SortByAuthor() error
}

// Catalog operation errors.
var (
	ErrCatalogFull     = errors.New("catalog is full")
	ErrNotFound        = errors.New("book not found")
	ErrInvalidData     = errors.New("invalid book data")
	ErrAlreadyBorrowed = errors.New("book is already borrowed")
	ErrNotBorrowed     = errors.New("book is not borrowed")
)

// Catalog lifecycle errors for backends that hold external resources.
var (
	ErrCatalogDetached = errors.New("catalog is detached")
	ErrAlreadyAttached = errors.New("catalog is already attached")
)
