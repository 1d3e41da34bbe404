package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvidmar/knjiznica/internal/model"
)

// CreateBook adds a new book to the library. The ISBN must not already exist.
func CreateBook(ctx context.Context, db *sql.DB, book model.Book) (*model.Book, error) {
	if book.Condition == "" {
		book.Condition = model.ConditionGood
	}
	if !model.ValidCondition(book.Condition) {
		return nil, fmt.Errorf("unknown condition %q: %w", book.Condition, ErrConstraintViolation)
	}

	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE isbn = ?`, book.ISBN,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicate isbn: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("book %q already exists: %w", book.ISBN, ErrConstraintViolation)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO books (isbn, title, author, genre, condition, shelf_location, shelf_row)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ISBN, book.Title, book.Author, book.Genre, book.Condition, book.ShelfLocation, book.ShelfRow,
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	return GetBook(ctx, db, book.ISBN)
}

// GetBook returns a book by ISBN.
func GetBook(ctx context.Context, db *sql.DB, isbn string) (*model.Book, error) {
	b := &model.Book{}
	var genre, shelfLocation, shelfRow, coverMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT isbn, title, author, genre, condition, shelf_location, shelf_row,
		        in_stock, cover_mime, created_at, updated_at
		 FROM books WHERE isbn = ?`, isbn,
	).Scan(&b.ISBN, &b.Title, &b.Author, &genre, &b.Condition, &shelfLocation, &shelfRow,
		&b.InStock, &coverMime, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %q: %w", isbn, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	b.Genre = genre.String
	b.ShelfLocation = shelfLocation.String
	b.ShelfRow = shelfRow.String
	b.CoverMime = coverMime.String
	return b, nil
}

// ListBooks returns all books ordered by title. If availableOnly is set, only
// books currently in stock are returned.
func ListBooks(ctx context.Context, db *sql.DB, availableOnly bool) ([]model.Book, error) {
	query := `SELECT isbn, title, author, genre, condition, shelf_location, shelf_row,
	                 in_stock, cover_mime, created_at, updated_at
	          FROM books`
	if availableOnly {
		query += ` WHERE in_stock = 1`
	}
	query += ` ORDER BY title`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		var genre, shelfLocation, shelfRow, coverMime sql.NullString
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &genre, &b.Condition, &shelfLocation, &shelfRow,
			&b.InStock, &coverMime, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.Genre = genre.String
		b.ShelfLocation = shelfLocation.String
		b.ShelfRow = shelfRow.String
		b.CoverMime = coverMime.String
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook updates a book's metadata. Availability is owned by the loan
// operations and cannot be changed here.
func UpdateBook(ctx context.Context, db *sql.DB, isbn string, book model.Book) error {
	if !model.ValidCondition(book.Condition) {
		return fmt.Errorf("unknown condition %q: %w", book.Condition, ErrConstraintViolation)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, genre = ?, condition = ?,
		        shelf_location = ?, shelf_row = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE isbn = ?`,
		book.Title, book.Author, book.Genre, book.Condition, book.ShelfLocation, book.ShelfRow, isbn,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("book %q: %w", isbn, ErrNotFound)
	}
	return nil
}

// DeleteBook removes a book and its closed-loan history. A book with an open
// loan cannot be deleted.
func DeleteBook(ctx context.Context, db *sql.DB, isbn string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE isbn = ? AND returned_at IS NULL`, isbn,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("checking open loans: %w", err)
	}
	if open > 0 {
		return fmt.Errorf("book %q is on loan: %w", isbn, ErrConstraintViolation)
	}

	// Returned loans reference the book, so history goes with it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE isbn = ?`, isbn); err != nil {
		return fmt.Errorf("deleting loan history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE isbn = ?`, isbn)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("book %q: %w", isbn, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing book deletion: %w", err)
	}
	return nil
}

// SetBookCover stores a book's cover image.
func SetBookCover(ctx context.Context, db *sql.DB, isbn string, cover []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE isbn = ?`,
		cover, mime, isbn,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("book %q: %w", isbn, ErrNotFound)
	}
	return nil
}

// GetBookCover returns a book's cover image data and MIME type. Both are
// empty when the book has no cover.
func GetBookCover(ctx context.Context, db *sql.DB, isbn string) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE isbn = ?`, isbn,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("book %q: %w", isbn, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}

// CountBooks returns the total number of books in the library.
func CountBooks(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return count, nil
}

// CountOnLoan returns the number of books currently on loan.
func CountOnLoan(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE returned_at IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting loans: %w", err)
	}
	return count, nil
}

// CountOverdue returns the number of open loans past their due date on the
// given day.
func CountOverdue(ctx context.Context, db *sql.DB, today time.Time) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE returned_at IS NULL AND due_date < ?`,
		today.Format(DateLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting overdue loans: %w", err)
	}
	return count, nil
}
