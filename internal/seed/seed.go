// Package seed supplies the books a catalog starts with: a built-in sample
// set, or books read from a JSON Lines file.
package seed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Default returns the built-in sample books in insertion order. Each call
// returns fresh values.
func Default() []*types.Book {
	return []*types.Book{
		types.NewBook("C程序设计", "谭浩强", "9787111495482", 2015, 39.80),
		types.NewBook("算法导论", "Thomas H. Cormen", "9787111187776", 2006, 89.00),
		types.NewBook("深入理解计算机系统", "Randal E. Bryant", "9787111321330", 2010, 139.00),
	}
}

// LoadJSONL reads one book per line from path. Fields follow the Book JSON
// tags; available defaults to true when absent. Blank and malformed lines are
// skipped.
func LoadJSONL(path string) ([]*types.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var books []*types.Book
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		b := &types.Book{Available: true}
		if err := json.Unmarshal(line, b); err != nil {
			continue
		}
		books = append(books, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return books, nil
}

// Into adds books to cat in order and returns how many were stored. It stops
// at the first failure, so a full catalog reports ErrCatalogFull along with
// the number added before it filled up.
func Into(cat types.Catalog, books []*types.Book) (int, error) {
	for i, b := range books {
		if err := cat.Add(b); err != nil {
			return i, fmt.Errorf("adding book %q: %w", b.ISBN, err)
		}
	}
	return len(books), nil
}
