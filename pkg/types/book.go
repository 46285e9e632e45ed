package types

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Publication year bounds accepted by UpdateYear. Both ends are inclusive.
const (
	MinYear = 1800
	MaxYear = 2024
)

// Book field validation errors.
var (
	ErrInvalidPrice = errors.New("price must not be negative")
	ErrInvalidYear  = errors.New("year out of range")
)

// Book is a single catalog entry.
//
// ISBN is the business identifier used for lookups, removal, borrow and
// return. It is not guaranteed to be unique within a catalog.
type Book struct {
	// BookID is a UUID v7 assigned by the catalog on insertion when empty.
	BookID string `json:"book_id"`

	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`

	// Year is the publication year.
	Year int `json:"year"`

	// Price is non-negative when set through UpdatePrice.
	Price float64 `json:"price"`

	// Available reports whether the book can be borrowed.
	Available bool `json:"available"`
}

// NewBook returns an available book with the given fields. No range
// validation is performed on year or price here; use Validate to check a
// freshly constructed book against the bounds that the update methods
// enforce.
func NewBook(title, author, isbn string, year int, price float64) *Book {
	return &Book{
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Year:      year,
		Price:     price,
		Available: true,
	}
}

// NewBookID returns a fresh UUID v7 string for Book.BookID.
func NewBookID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}

// ValidatePrice returns ErrInvalidPrice when price is negative or NaN.
func ValidatePrice(price float64) error {
	if !(price >= 0) {
		return ErrInvalidPrice
	}
	return nil
}

// ValidateYear returns ErrInvalidYear when year lies outside [MinYear, MaxYear].
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// Validate checks year and price with the same rules as the update methods.
// Returns the first failing rule's error.
func (b *Book) Validate() error {
	if err := ValidateYear(b.Year); err != nil {
		return err
	}
	return ValidatePrice(b.Price)
}

// UpdatePrice sets the price. Returns ErrInvalidPrice and leaves the book
// unchanged if price is negative or NaN.
func (b *Book) UpdatePrice(price float64) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	b.Price = price
	return nil
}

// UpdateYear sets the publication year. Returns ErrInvalidYear and leaves the
// book unchanged if year is outside [MinYear, MaxYear].
func (b *Book) UpdateYear(year int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	b.Year = year
	return nil
}

// IsAvailable reports whether the book can be borrowed.
func (b *Book) IsAvailable() bool {
	return b.Available
}

// SetAvailability sets the availability flag unconditionally. Catalogs use it
// to implement Borrow and Return; callers should go through those instead.
func (b *Book) SetAvailability(available bool) {
	b.Available = available
}
