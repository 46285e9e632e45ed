package sqlite

// Schema DDL. The position column carries catalog order; it only ever
// increases on insert and is rewritten densely by the sort operations.
// Rows are addressed by rowid: book_id is caller-settable and may repeat.
// A NULL price stands for NaN, which SQLite cannot store as REAL.
const (
	createBooks = `CREATE TABLE books (
    book_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    isbn TEXT NOT NULL,
    year INTEGER NOT NULL,
    price REAL,
    available INTEGER NOT NULL
);`

	idxBooksPosition = `CREATE INDEX idx_books_position ON books(position);`
	idxBooksISBN     = `CREATE INDEX idx_books_isbn ON books(isbn, position);`
)

// schemaDDL lists all statements run on Attach, in order.
var schemaDDL = []string{
	createBooks,
	idxBooksPosition,
	idxBooksISBN,
}
