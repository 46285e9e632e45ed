// Package menu runs the interactive text menu over a catalog. Each menu
// choice maps to exactly one catalog operation; the catalog never calls
// back into the menu.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/shelf/internal/render"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Messages printed around the command loop.
const (
	MsgGoodbye       = "Goodbye!"
	MsgInvalidChoice = "Invalid choice."
	MsgWholeNumber   = "Please enter a whole number."
	MsgNumber        = "Please enter a number."
)

// command is one numbered menu entry.
type command struct {
	key   int
	label string
	run   func(s *Session, ctx context.Context) error
}

// commands lists the menu in display order. Exit (0) is handled by Run.
var commands = []command{
	{1, "Add book", (*Session).add},
	{2, "Remove book", (*Session).remove},
	{3, "Find book by ISBN", (*Session).findByISBN},
	{4, "Find book by title", (*Session).findByTitle},
	{5, "Borrow book", (*Session).borrow},
	{6, "Return book", (*Session).giveBack},
	{7, "List books", (*Session).list},
	{8, "Sort by title", (*Session).sortByTitle},
	{9, "Sort by author", (*Session).sortByAuthor},
	{10, "Update price", (*Session).updatePrice},
	{11, "Update year", (*Session).updateYear},
}

// userErrors are catalog outcomes reported to the user without ending the
// session.
var userErrors = []error{
	types.ErrCatalogFull,
	types.ErrNotFound,
	types.ErrAlreadyBorrowed,
	types.ErrNotBorrowed,
	types.ErrInvalidPrice,
	types.ErrInvalidYear,
}

// Session reads commands from an input stream and applies them to a catalog.
type Session struct {
	cat      types.Catalog
	in       *bufio.Reader
	lines    <-chan inputLine
	out      *render.Printer
	logger   *slog.Logger
	jsonMode bool
}

// inputLine is one line read from the input stream, or the read error that
// ended it.
type inputLine struct {
	text string
	err  error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for command tracing and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithJSON switches book and listing output to JSON.
func WithJSON(on bool) Option {
	return func(s *Session) { s.jsonMode = on }
}

// New returns a session over cat that reads from in and writes to out.
func New(cat types.Catalog, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		cat:    cat,
		in:     bufio.NewReader(in),
		out:    render.NewPrinter(out),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes commands until the user exits, input ends, or ctx is done.
// Rejected operations are reported and the loop continues; only I/O and
// backend failures are returned. Reaching the end of input is not an error.
// Cancellation interrupts a pending prompt and returns ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make(chan inputLine)
	done := make(chan struct{})
	defer close(done)
	s.lines = lines
	go s.readInput(lines, done)

	for {
		if err := ctx.Err(); err != nil {
			return s.interrupted(err)
		}

		s.printMenu()
		choice, err := s.readInt(ctx, "Choose an option: ")
		if err == nil && choice == 0 {
			fmt.Fprintln(s.w(), MsgGoodbye)
			return nil
		}
		if err == nil {
			err = s.dispatch(ctx, choice)
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.w(), MsgGoodbye)
			return nil
		}
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return s.interrupted(err)
		}
		if err != nil {
			return err
		}
	}
}

// interrupted ends the prompt line left open by a cancelled read.
func (s *Session) interrupted(err error) error {
	fmt.Fprintln(s.w())
	fmt.Fprintln(s.w(), MsgGoodbye)
	return err
}

// readInput feeds lines from the input stream to lines until the stream ends
// or done is closed. lines is closed at end of input.
func (s *Session) readInput(lines chan<- inputLine, done <-chan struct{}) {
	defer close(lines)
	for {
		text, err := s.in.ReadString('\n')
		if text != "" || err == nil {
			select {
			case lines <- inputLine{text: text}:
			case <-done:
				return
			}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			select {
			case lines <- inputLine{err: fmt.Errorf("reading input: %w", err)}:
			case <-done:
			}
		}
		return
	}
}

func (s *Session) w() io.Writer {
	return s.out.Writer()
}

func (s *Session) printMenu() {
	fmt.Fprintln(s.w())
	s.out.Heading("=== Book Catalog ===")
	for _, c := range commands {
		fmt.Fprintf(s.w(), "%d. %s\n", c.key, c.label)
	}
	fmt.Fprintln(s.w(), "0. Exit")
}

func (s *Session) dispatch(ctx context.Context, choice int) error {
	for _, c := range commands {
		if c.key == choice {
			s.logger.Debug("menu command", "choice", choice, "command", c.label)
			return c.run(s, ctx)
		}
	}
	s.out.Failure(MsgInvalidChoice)
	return nil
}

// report prints the outcome of a catalog call. User-level failures are
// printed and swallowed; anything else is returned.
func (s *Session) report(action string, err error, success string) error {
	if err == nil {
		s.out.Success(success)
		return nil
	}
	for _, ue := range userErrors {
		if errors.Is(err, ue) {
			s.out.Failure(fmt.Sprintf("%s failed: %s.", action, ue))
			return nil
		}
	}
	return fmt.Errorf("%s: %w", strings.ToLower(action), err)
}

// readLine prompts and returns the next line with surrounding space removed.
// Returns io.EOF when input is exhausted and ctx.Err() when ctx is done
// first.
func (s *Session) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.w(), prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case in, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		if in.err != nil {
			return "", in.err
		}
		return strings.TrimSpace(in.text), nil
	}
}

// readInt prompts until the line parses as an integer.
func (s *Session) readInt(ctx context.Context, prompt string) (int, error) {
	for {
		line, err := s.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(s.w(), MsgWholeNumber)
	}
}

// readFloat prompts until the line parses as a finite number.
func (s *Session) readFloat(ctx context.Context, prompt string) (float64, error) {
	for {
		line, err := s.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(line, 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
		fmt.Fprintln(s.w(), MsgNumber)
	}
}

// showBook prints a found book, or a failure line for ErrNotFound.
func (s *Session) showBook(b *types.Book, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		s.out.Failure("Book not found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	if s.jsonMode {
		return render.JSON(s.w(), b)
	}
	s.out.Book(b)
	return nil
}

func (s *Session) add(ctx context.Context) error {
	title, err := s.readLine(ctx, "Title: ")
	if err != nil {
		return err
	}
	author, err := s.readLine(ctx, "Author: ")
	if err != nil {
		return err
	}
	isbn, err := s.readLine(ctx, "ISBN: ")
	if err != nil {
		return err
	}
	year, err := s.readInt(ctx, "Year: ")
	if err != nil {
		return err
	}
	price, err := s.readFloat(ctx, "Price: ")
	if err != nil {
		return err
	}

	b := types.NewBook(title, author, isbn, year, price)
	// Construction does not enforce the update bounds; flag violations only.
	if verr := b.Validate(); verr != nil {
		s.logger.Warn("book added with out-of-range field", "isbn", isbn, "error", verr)
	}
	return s.report("Add", s.cat.Add(b), "Book added.")
}

func (s *Session) remove(ctx context.Context) error {
	isbn, err := s.readLine(ctx, "ISBN of the book to remove: ")
	if err != nil {
		return err
	}
	return s.report("Remove", s.cat.Remove(isbn), "Book removed.")
}

func (s *Session) findByISBN(ctx context.Context) error {
	isbn, err := s.readLine(ctx, "ISBN to find: ")
	if err != nil {
		return err
	}
	return s.showBook(s.cat.FindByISBN(isbn))
}

func (s *Session) findByTitle(ctx context.Context) error {
	title, err := s.readLine(ctx, "Title (or part of it) to find: ")
	if err != nil {
		return err
	}
	return s.showBook(s.cat.FindByTitle(title))
}

func (s *Session) borrow(ctx context.Context) error {
	isbn, err := s.readLine(ctx, "ISBN of the book to borrow: ")
	if err != nil {
		return err
	}
	return s.report("Borrow", s.cat.Borrow(isbn), "Book borrowed.")
}

func (s *Session) giveBack(ctx context.Context) error {
	isbn, err := s.readLine(ctx, "ISBN of the book to return: ")
	if err != nil {
		return err
	}
	return s.report("Return", s.cat.Return(isbn), "Book returned.")
}

func (s *Session) list(context.Context) error {
	books, err := s.cat.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if s.jsonMode {
		return render.JSON(s.w(), books)
	}
	s.out.List(books)
	return nil
}

func (s *Session) sortByTitle(ctx context.Context) error {
	if err := s.cat.SortByTitle(); err != nil {
		return fmt.Errorf("sort by title: %w", err)
	}
	s.out.Success("Sorted by title.")
	return s.list(ctx)
}

func (s *Session) sortByAuthor(ctx context.Context) error {
	if err := s.cat.SortByAuthor(); err != nil {
		return fmt.Errorf("sort by author: %w", err)
	}
	s.out.Success("Sorted by author.")
	return s.list(ctx)
}

func (s *Session) updatePrice(ctx context.Context) error {
	isbn, err := s.readLine(ctx, "ISBN of the book to update: ")
	if err != nil {
		return err
	}
	price, err := s.readFloat(ctx, "New price: ")
	if err != nil {
		return err
	}
	return s.report("Update", s.cat.UpdatePrice(isbn, price), "Price updated.")
}

func (s *Session) updateYear(ctx context.Context) error {
	isbn, err := s.readLine(ctx, "ISBN of the book to update: ")
	if err != nil {
		return err
	}
	year, err := s.readInt(ctx, "New year: ")
	if err != nil {
		return err
	}
	return s.report("Update", s.cat.UpdateYear(isbn, year), "Year updated.")
}
