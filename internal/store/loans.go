package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvidmar/knjiznica/internal/model"
)

// DateLayout is the storage format for loan dates. ISO dates compare
// correctly as plain text, which the overdue and reminder queries rely on.
const DateLayout = "2006-01-02"

// Borrow lends a book to a friend, creating an open loan. The book must be in
// stock and the friend must have remaining capacity; both checks and the two
// writes happen in a single transaction, so a failure leaves nothing behind.
func Borrow(ctx context.Context, db *sql.DB, isbn string, friendID int64, borrowDate, dueDate time.Time, reminderDate *time.Time) (*model.Loan, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var inStock bool
	err = tx.QueryRowContext(ctx,
		`SELECT in_stock FROM books WHERE isbn = ?`, isbn,
	).Scan(&inStock)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %q: %w", isbn, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("checking book availability: %w", err)
	}
	if !inStock {
		return nil, fmt.Errorf("book %q: %w", isbn, ErrAlreadyOnLoan)
	}

	// Capacity is derived from open loans, never stored.
	var maxLoans, open int
	err = tx.QueryRowContext(ctx,
		`SELECT f.max_loans, COUNT(l.id)
		 FROM friends f
		 LEFT JOIN loans l ON l.friend_id = f.id AND l.returned_at IS NULL
		 WHERE f.id = ?
		 GROUP BY f.id`, friendID,
	).Scan(&maxLoans, &open)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("friend %d: %w", friendID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("checking friend capacity: %w", err)
	}
	if open >= maxLoans {
		return nil, fmt.Errorf("friend %d has %d of %d loans out: %w", friendID, open, maxLoans, ErrCapacityExceeded)
	}

	var reminder any
	if reminderDate != nil {
		reminder = reminderDate.Format(DateLayout)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO loans (isbn, friend_id, borrow_date, due_date, reminder_date)
		 VALUES (?, ?, ?, ?, ?)`,
		isbn, friendID, borrowDate.Format(DateLayout), dueDate.Format(DateLayout), reminder,
	)
	if err != nil {
		return nil, fmt.Errorf("creating loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET in_stock = 0, updated_at = CURRENT_TIMESTAMP WHERE isbn = ?`, isbn,
	); err != nil {
		return nil, fmt.Errorf("marking book on loan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing loan: %w", err)
	}

	loanID, _ := result.LastInsertId()
	return GetLoan(ctx, db, loanID)
}

// Return closes the open loan for the given book and friend and puts the book
// back in stock. The loan row is kept as history.
func Return(ctx context.Context, db *sql.DB, isbn string, friendID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var loanID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM loans WHERE isbn = ? AND friend_id = ? AND returned_at IS NULL`,
		isbn, friendID,
	).Scan(&loanID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no open loan of %q to friend %d, nothing to return: %w", isbn, friendID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("finding open loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE loans SET returned_at = CURRENT_TIMESTAMP WHERE id = ?`, loanID,
	); err != nil {
		return fmt.Errorf("closing loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET in_stock = 1, updated_at = CURRENT_TIMESTAMP WHERE isbn = ?`, isbn,
	); err != nil {
		return fmt.Errorf("marking book returned: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing return: %w", err)
	}
	return nil
}

// GetLoan returns a loan by ID, joined with the book title and friend name.
func GetLoan(ctx context.Context, db *sql.DB, id int64) (*model.Loan, error) {
	row := db.QueryRowContext(ctx,
		`SELECT l.id, l.isbn, l.friend_id, l.borrow_date, l.due_date, l.reminder_date,
		        l.returned_at, l.created_at,
		        b.title, f.first_name || ' ' || f.last_name AS friend_name
		 FROM loans l
		 JOIN books b ON b.isbn = l.isbn
		 JOIN friends f ON f.id = l.friend_id
		 WHERE l.id = ?`, id,
	)

	loan, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting loan: %w", err)
	}
	return loan, nil
}

// ListActiveLoans returns all open loans ordered by due date ascending,
// joined with book title and friend name.
func ListActiveLoans(ctx context.Context, db *sql.DB) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.isbn, l.friend_id, l.borrow_date, l.due_date, l.reminder_date,
		        l.returned_at, l.created_at,
		        b.title, f.first_name || ' ' || f.last_name AS friend_name
		 FROM loans l
		 JOIN books b ON b.isbn = l.isbn
		 JOIN friends f ON f.id = l.friend_id
		 WHERE l.returned_at IS NULL
		 ORDER BY l.due_date`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// ListOverdue returns open loans whose due date is strictly before the given
// day, ordered by due date ascending.
func ListOverdue(ctx context.Context, db *sql.DB, today time.Time) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.isbn, l.friend_id, l.borrow_date, l.due_date, l.reminder_date,
		        l.returned_at, l.created_at,
		        b.title, f.first_name || ' ' || f.last_name AS friend_name
		 FROM loans l
		 JOIN books b ON b.isbn = l.isbn
		 JOIN friends f ON f.id = l.friend_id
		 WHERE l.returned_at IS NULL AND l.due_date < ?
		 ORDER BY l.due_date`,
		today.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("listing overdue loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// FriendLoanHistory returns every loan a friend has ever had, open loans
// first, then returned ones newest first.
func FriendLoanHistory(ctx context.Context, db *sql.DB, friendID int64) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.isbn, l.friend_id, l.borrow_date, l.due_date, l.reminder_date,
		        l.returned_at, l.created_at,
		        b.title, f.first_name || ' ' || f.last_name AS friend_name
		 FROM loans l
		 JOIN books b ON b.isbn = l.isbn
		 JOIN friends f ON f.id = l.friend_id
		 WHERE l.friend_id = ?
		 ORDER BY l.returned_at IS NOT NULL, l.borrow_date DESC`, friendID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friend loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*model.Loan, error) {
	var l model.Loan
	var reminder sql.NullString
	var returned sql.NullTime
	if err := row.Scan(&l.ID, &l.ISBN, &l.FriendID, &l.BorrowDate, &l.DueDate, &reminder,
		&returned, &l.CreatedAt, &l.Title, &l.FriendName); err != nil {
		return nil, err
	}
	l.ReminderDate = reminder.String
	if returned.Valid {
		l.ReturnedAt = &returned.Time
	}
	return &l, nil
}

func scanLoans(rows *sql.Rows) ([]model.Loan, error) {
	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}
