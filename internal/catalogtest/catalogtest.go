// Package catalogtest provides a conformance suite that every types.Catalog
// backend runs from its own tests.
//
// Backends may return stored books or copies from lookups, so the suite only
// observes state through Catalog methods.
package catalogtest

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Factory returns a new, empty catalog. Backends register any teardown with
// t.Cleanup; the suite also detaches catalogs it builds per rapid iteration
// as soon as the iteration ends.
type Factory func(t *testing.T) types.Catalog

// Run executes the full conformance suite against catalogs built by newCatalog.
func Run(t *testing.T, newCatalog Factory) {
	t.Run("AddAndCount", func(t *testing.T) { testAddAndCount(t, newCatalog) })
	t.Run("AddNil", func(t *testing.T) { testAddNil(t, newCatalog) })
	t.Run("AssignsBookID", func(t *testing.T) { testAssignsBookID(t, newCatalog) })
	t.Run("Capacity", func(t *testing.T) { testCapacity(t, newCatalog) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, newCatalog) })
	t.Run("FindByISBN", func(t *testing.T) { testFindByISBN(t, newCatalog) })
	t.Run("FindByTitle", func(t *testing.T) { testFindByTitle(t, newCatalog) })
	t.Run("DuplicateISBN", func(t *testing.T) { testDuplicateISBN(t, newCatalog) })
	t.Run("DuplicateBookID", func(t *testing.T) { testDuplicateBookID(t, newCatalog) })
	t.Run("NonFinitePrice", func(t *testing.T) { testNonFinitePrice(t, newCatalog) })
	t.Run("BorrowReturn", func(t *testing.T) { testBorrowReturn(t, newCatalog) })
	t.Run("UpdateFields", func(t *testing.T) { testUpdateFields(t, newCatalog) })
	t.Run("List", func(t *testing.T) { testList(t, newCatalog) })
	t.Run("SortByTitle", func(t *testing.T) { testSortByTitle(t, newCatalog) })
	t.Run("SortByAuthor", func(t *testing.T) { testSortByAuthor(t, newCatalog) })
	t.Run("SortIsStable", func(t *testing.T) { testSortIsStable(t, newCatalog) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, newCatalog) })
	t.Run("MatchesModel", func(t *testing.T) { testMatchesModel(t, newCatalog) })
}

func mustCount(t require.TestingT, c types.Catalog) int {
	n, err := c.Count()
	require.NoError(t, err)
	return n
}

func isbns(t require.TestingT, c types.Catalog) []string {
	books, err := c.List()
	require.NoError(t, err)
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ISBN
	}
	return out
}

func testAddAndCount(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	assert.Equal(t, 0, mustCount(t, c))

	require.NoError(t, c.Add(types.NewBook("A", "x", "1", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("B", "y", "2", 2001, 2)))
	assert.Equal(t, 2, mustCount(t, c))
	assert.Equal(t, []string{"1", "2"}, isbns(t, c), "insertion order preserved")
}

func testAddNil(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	assert.ErrorIs(t, c.Add(nil), types.ErrInvalidData)
	assert.Equal(t, 0, mustCount(t, c))
}

func testAssignsBookID(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)

	fresh := types.NewBook("A", "x", "1", 2000, 1)
	require.NoError(t, c.Add(fresh))
	preset := types.NewBook("B", "y", "2", 2000, 1)
	preset.BookID = "preset-id"
	require.NoError(t, c.Add(preset))

	got, err := c.FindByISBN("1")
	require.NoError(t, err)
	assert.NotEmpty(t, got.BookID)

	got, err = c.FindByISBN("2")
	require.NoError(t, err)
	assert.Equal(t, "preset-id", got.BookID)
}

func testCapacity(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	for i := 0; i < types.MaxBooks; i++ {
		require.NoError(t, c.Add(types.NewBook(fmt.Sprintf("T%04d", i), "a", fmt.Sprintf("%d", i), 2000, 1)))
	}
	assert.Equal(t, types.MaxBooks, mustCount(t, c))

	err := c.Add(types.NewBook("overflow", "a", "overflow", 2000, 1))
	assert.ErrorIs(t, err, types.ErrCatalogFull)
	assert.Equal(t, types.MaxBooks, mustCount(t, c))

	_, err = c.FindByISBN("overflow")
	assert.ErrorIs(t, err, types.ErrNotFound, "rejected book must not be stored")
}

func testRemove(t *testing.T, newCatalog Factory) {
	tests := []struct {
		name      string
		isbn      string
		wantErr   error
		wantISBNs []string
	}{
		{name: "remove first", isbn: "1", wantISBNs: []string{"2", "3"}},
		{name: "remove middle preserves order", isbn: "2", wantISBNs: []string{"1", "3"}},
		{name: "remove last", isbn: "3", wantISBNs: []string{"1", "2"}},
		{name: "miss leaves catalog unchanged", isbn: "4", wantErr: types.ErrNotFound, wantISBNs: []string{"1", "2", "3"}},
		{name: "empty isbn misses", isbn: "", wantErr: types.ErrNotFound, wantISBNs: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalog(t)
			for _, id := range []string{"1", "2", "3"} {
				require.NoError(t, c.Add(types.NewBook("T"+id, "a", id, 2000, 1)))
			}

			err := c.Remove(tt.isbn)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantISBNs, isbns(t, c))
			assert.Equal(t, len(tt.wantISBNs), mustCount(t, c))
		})
	}

	t.Run("add then remove restores count", func(t *testing.T) {
		c := newCatalog(t)
		require.NoError(t, c.Add(types.NewBook("A", "x", "1", 2000, 1)))
		before := mustCount(t, c)

		require.NoError(t, c.Add(types.NewBook("B", "y", "2", 2000, 1)))
		require.NoError(t, c.Remove("2"))
		assert.Equal(t, before, mustCount(t, c))
	})
}

func testFindByISBN(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("Go", "Pike", "100", 2015, 30)))

	got, err := c.FindByISBN("100")
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, "Pike", got.Author)
	assert.Equal(t, 2015, got.Year)
	assert.Equal(t, 30.0, got.Price)
	assert.True(t, got.IsAvailable())

	_, err = c.FindByISBN("10")
	assert.ErrorIs(t, err, types.ErrNotFound, "exact match only")
	_, err = c.FindByISBN("1000")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func testFindByTitle(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("The Go Programming Language", "Donovan", "1", 2015, 1)))
	require.NoError(t, c.Add(types.NewBook("Learning Go", "Bodner", "2", 2021, 1)))
	require.NoError(t, c.Add(types.NewBook("深入理解计算机系统", "Bryant", "3", 2010, 1)))

	tests := []struct {
		name     string
		substr   string
		wantISBN string
		wantErr  error
	}{
		{name: "first of several matches", substr: "Go", wantISBN: "1"},
		{name: "unique match", substr: "Learning", wantISBN: "2"},
		{name: "multibyte substring", substr: "计算机", wantISBN: "3"},
		{name: "full title", substr: "Learning Go", wantISBN: "2"},
		{name: "case sensitive", substr: "go", wantErr: types.ErrNotFound},
		{name: "empty substring matches first", substr: "", wantISBN: "1"},
		{name: "no match", substr: "Rust", wantErr: types.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.FindByTitle(tt.substr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantISBN, got.ISBN)
		})
	}
}

func testDuplicateISBN(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("First", "a", "dup", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("Other", "b", "x", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("Second", "c", "dup", 2000, 1)))

	got, err := c.FindByISBN("dup")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)

	require.NoError(t, c.Borrow("dup"))
	assert.ErrorIs(t, c.Borrow("dup"), types.ErrAlreadyBorrowed, "only the first match is reachable")

	require.NoError(t, c.Remove("dup"))
	got, err = c.FindByISBN("dup")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
	assert.True(t, got.IsAvailable())
	assert.Equal(t, 2, mustCount(t, c))
}

func testDuplicateBookID(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	for _, isbn := range []string{"1", "2", "3"} {
		b := types.NewBook("T"+isbn, "a", isbn, 2000, 1)
		b.BookID = "same"
		require.NoError(t, c.Add(b), "BookID %q is not a uniqueness key", b.BookID)
	}
	assert.Equal(t, 3, mustCount(t, c))

	require.NoError(t, c.Borrow("2"))
	require.NoError(t, c.UpdatePrice("3", 7))
	require.NoError(t, c.Remove("1"))

	books, err := c.List()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "2", books[0].ISBN)
	assert.False(t, books[0].Available)
	assert.Equal(t, 1.0, books[0].Price)
	assert.Equal(t, "3", books[1].ISBN)
	assert.True(t, books[1].Available)
	assert.Equal(t, 7.0, books[1].Price)
	assert.Equal(t, "same", books[1].BookID)

	require.NoError(t, c.SortByTitle())
	assert.Equal(t, []string{"2", "3"}, isbns(t, c))
}

func testNonFinitePrice(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("NaN", "a", "1", 2000, math.NaN())))
	require.NoError(t, c.Add(types.NewBook("Inf", "a", "2", 2000, math.Inf(1))))
	assert.Equal(t, 2, mustCount(t, c))

	got, err := c.FindByISBN("1")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Price))
	got, err = c.FindByISBN("2")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Price, 1))

	assert.ErrorIs(t, c.UpdatePrice("2", math.NaN()), types.ErrInvalidPrice)
	require.NoError(t, c.UpdatePrice("1", 12.5))
	got, err = c.FindByISBN("1")
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Price)
}

func testBorrowReturn(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("A", "x", "1", 2000, 1)))

	require.NoError(t, c.Borrow("1"))
	got, err := c.FindByISBN("1")
	require.NoError(t, err)
	assert.False(t, got.IsAvailable())

	assert.ErrorIs(t, c.Borrow("1"), types.ErrAlreadyBorrowed)

	require.NoError(t, c.Return("1"))
	got, err = c.FindByISBN("1")
	require.NoError(t, err)
	assert.True(t, got.IsAvailable())

	assert.ErrorIs(t, c.Return("1"), types.ErrNotBorrowed)

	assert.ErrorIs(t, c.Borrow("missing"), types.ErrNotFound)
	assert.ErrorIs(t, c.Return("missing"), types.ErrNotFound)
}

func testUpdateFields(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("A", "x", "1", 2000, 10)))

	assert.ErrorIs(t, c.UpdatePrice("1", -1), types.ErrInvalidPrice)
	assert.ErrorIs(t, c.UpdateYear("1", 1799), types.ErrInvalidYear)
	assert.ErrorIs(t, c.UpdateYear("1", 2025), types.ErrInvalidYear)
	got, err := c.FindByISBN("1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Price, "rejected price leaves state unchanged")
	assert.Equal(t, 2000, got.Year, "rejected year leaves state unchanged")

	require.NoError(t, c.UpdatePrice("1", 0))
	require.NoError(t, c.UpdateYear("1", 1800))
	got, err = c.FindByISBN("1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Price)
	assert.Equal(t, 1800, got.Year)

	require.NoError(t, c.UpdateYear("1", 2024))
	got, err = c.FindByISBN("1")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year)

	assert.ErrorIs(t, c.UpdatePrice("missing", 1), types.ErrNotFound)
	assert.ErrorIs(t, c.UpdateYear("missing", 2000), types.ErrNotFound)
}

func testList(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	books, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, books)

	require.NoError(t, c.Add(types.NewBook("A", "x", "1", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("B", "y", "2", 2001, 2.5)))
	require.NoError(t, c.Borrow("2"))

	books, err = c.List()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Title)
	assert.True(t, books[0].Available)
	assert.Equal(t, "B", books[1].Title)
	assert.Equal(t, 2.5, books[1].Price)
	assert.False(t, books[1].Available)
}

func testSortByTitle(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("C程序设计", "谭浩强", "A", 2015, 39.80)))
	require.NoError(t, c.Add(types.NewBook("算法导论", "Thomas H. Cormen", "B", 2006, 89.00)))
	require.NoError(t, c.Add(types.NewBook("深入理解计算机系统", "Randal E. Bryant", "C", 2010, 139.00)))

	require.NoError(t, c.SortByTitle())
	want := []string{"A", "C", "B"}
	assert.Equal(t, want, isbns(t, c))

	require.NoError(t, c.SortByTitle())
	assert.Equal(t, want, isbns(t, c), "sort must be idempotent")

	// New books append after a sort.
	require.NoError(t, c.Add(types.NewBook("AAA", "z", "D", 2000, 1)))
	assert.Equal(t, []string{"A", "C", "B", "D"}, isbns(t, c))
}

func testSortByAuthor(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("C程序设计", "谭浩强", "A", 2015, 39.80)))
	require.NoError(t, c.Add(types.NewBook("算法导论", "Thomas H. Cormen", "B", 2006, 89.00)))
	require.NoError(t, c.Add(types.NewBook("深入理解计算机系统", "Randal E. Bryant", "C", 2010, 139.00)))

	require.NoError(t, c.SortByAuthor())
	want := []string{"C", "B", "A"}
	assert.Equal(t, want, isbns(t, c))

	require.NoError(t, c.SortByAuthor())
	assert.Equal(t, want, isbns(t, c), "sort must be idempotent")
}

func testSortIsStable(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("Same", "b", "1", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("Alpha", "a", "2", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("Same", "a", "3", 2000, 1)))
	require.NoError(t, c.Add(types.NewBook("Same", "c", "4", 2000, 1)))

	require.NoError(t, c.SortByTitle())
	assert.Equal(t, []string{"2", "1", "3", "4"}, isbns(t, c))

	require.NoError(t, c.SortByAuthor())
	assert.Equal(t, []string{"2", "3", "1", "4"}, isbns(t, c))

	require.NoError(t, c.SortByTitle())
	assert.Equal(t, []string{"2", "3", "1", "4"}, isbns(t, c), "ties keep the author order")
}

func testScenario(t *testing.T, newCatalog Factory) {
	c := newCatalog(t)
	require.NoError(t, c.Add(types.NewBook("One", "a", "111", 2001, 1)))
	require.NoError(t, c.Add(types.NewBook("Two", "b", "222", 2002, 2)))
	require.NoError(t, c.Add(types.NewBook("Three", "c", "333", 2003, 3)))

	got, err := c.FindByISBN("222")
	require.NoError(t, err)
	assert.Equal(t, "Two", got.Title)

	require.NoError(t, c.Remove("222"))
	assert.Equal(t, 2, mustCount(t, c))

	_, err = c.FindByISBN("222")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// detacher is implemented by backends that hold resources until detached.
type detacher interface {
	Detach() error
}

// modelBook is the reference state tracked by testMatchesModel.
type modelBook struct {
	title, author, isbn string
	available           bool
}

// testMatchesModel drives random operation sequences against the catalog and
// a trivially correct slice model, comparing results and final order.
func testMatchesModel(t *testing.T, newCatalog Factory) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newCatalog(t)
		if d, ok := c.(detacher); ok {
			defer d.Detach()
		}
		var model []modelBook

		isbnGen := rapid.SampledFrom([]string{"a", "b", "c", "d"})
		nameGen := rapid.SampledFrom([]string{"Go", "Rust", "C", "go", "Zig", "算法"})

		first := func(isbn string) int {
			for i, m := range model {
				if m.isbn == isbn {
					return i
				}
			}
			return -1
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			isbn := isbnGen.Draw(rt, "isbn")
			switch op := rapid.IntRange(0, 5).Draw(rt, "op"); op {
			case 0:
				m := modelBook{
					title:     nameGen.Draw(rt, "title"),
					author:    nameGen.Draw(rt, "author"),
					isbn:      isbn,
					available: true,
				}
				require.NoError(rt, c.Add(types.NewBook(m.title, m.author, m.isbn, 2000, 1)))
				model = append(model, m)
			case 1:
				i := first(isbn)
				err := c.Remove(isbn)
				if i < 0 {
					require.ErrorIs(rt, err, types.ErrNotFound)
				} else {
					require.NoError(rt, err)
					model = append(model[:i], model[i+1:]...)
				}
			case 2:
				i := first(isbn)
				err := c.Borrow(isbn)
				switch {
				case i < 0:
					require.ErrorIs(rt, err, types.ErrNotFound)
				case !model[i].available:
					require.ErrorIs(rt, err, types.ErrAlreadyBorrowed)
				default:
					require.NoError(rt, err)
					model[i].available = false
				}
			case 3:
				i := first(isbn)
				err := c.Return(isbn)
				switch {
				case i < 0:
					require.ErrorIs(rt, err, types.ErrNotFound)
				case model[i].available:
					require.ErrorIs(rt, err, types.ErrNotBorrowed)
				default:
					require.NoError(rt, err)
					model[i].available = true
				}
			case 4:
				require.NoError(rt, c.SortByTitle())
				stableSort(model, func(m modelBook) string { return m.title })
			case 5:
				require.NoError(rt, c.SortByAuthor())
				stableSort(model, func(m modelBook) string { return m.author })
			}

			books, err := c.List()
			require.NoError(rt, err)
			require.Len(rt, books, len(model))
			for i, b := range books {
				require.Equal(rt, model[i].isbn, b.ISBN, "position %d", i)
				require.Equal(rt, model[i].title, b.Title, "position %d", i)
				require.Equal(rt, model[i].author, b.Author, "position %d", i)
				require.Equal(rt, model[i].available, b.Available, "position %d", i)
			}
		}
	})
}

// stableSort is an insertion sort, stable by construction.
func stableSort(books []modelBook, key func(modelBook) string) {
	for i := 1; i < len(books); i++ {
		for j := i; j > 0 && key(books[j]) < key(books[j-1]); j-- {
			books[j], books[j-1] = books[j-1], books[j]
		}
	}
}
