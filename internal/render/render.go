// Package render formats books and catalog listings for people and for
// scripts. It never touches catalog state.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Status labels shown for the availability flag.
const (
	StatusAvailable = "available"
	StatusBorrowed  = "borrowed"
)

// EmptyNotice is printed by List for a catalog with no books.
const EmptyNotice = "No books in the catalog."

// Printer writes styled text to w. Styles are bound to w's terminal
// capabilities, so output to a pipe or buffer is plain text.
type Printer struct {
	w       io.Writer
	heading lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// NewPrinter returns a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		success: r.NewStyle().Foreground(lipgloss.Color("#73F59F")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Heading writes a single styled line.
func (p *Printer) Heading(text string) {
	fmt.Fprintln(p.w, p.heading.Render(text))
}

// Success writes a single line reporting a completed operation.
func (p *Printer) Success(text string) {
	fmt.Fprintln(p.w, p.success.Render(text))
}

// Failure writes a single line reporting a rejected operation.
func (p *Printer) Failure(text string) {
	fmt.Fprintln(p.w, p.failure.Render(text))
}

// Book writes the multi-line description of b.
func (p *Printer) Book(b *types.Book) {
	status := StatusAvailable
	if !b.IsAvailable() {
		status = StatusBorrowed
	}
	fmt.Fprintf(p.w, "Title:  %s\n", b.Title)
	fmt.Fprintf(p.w, "Author: %s\n", b.Author)
	fmt.Fprintf(p.w, "ISBN:   %s\n", b.ISBN)
	fmt.Fprintf(p.w, "Year:   %d\n", b.Year)
	fmt.Fprintf(p.w, "Price:  %.2f\n", b.Price)
	fmt.Fprintf(p.w, "Status: %s\n", status)
}

// List writes EmptyNotice for no books; otherwise a count line followed by
// every book, numbered from 1 in the given order.
func (p *Printer) List(books []*types.Book) {
	if len(books) == 0 {
		fmt.Fprintln(p.w, EmptyNotice)
		return
	}
	p.Heading(fmt.Sprintf("Catalog holds %d book(s):", len(books)))
	for i, b := range books {
		fmt.Fprintln(p.w)
		p.Heading(fmt.Sprintf("--- Book %d ---", i+1))
		p.Book(b)
	}
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
