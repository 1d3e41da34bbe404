package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvidmar/knjiznica/internal/model"
)

// ListDueReminders returns one row per (open loan due a reminder today,
// contact of the borrowing friend). A friend with three contacts yields three
// rows for the same loan; callers group by LoanID to build one card per loan.
// Loans whose friend has no contacts still appear, with empty contact fields.
func ListDueReminders(ctx context.Context, db *sql.DB, today time.Time) ([]model.Reminder, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.isbn, b.title, l.due_date,
		        f.id, f.first_name, f.last_name,
		        c.id, c.type, c.value
		 FROM loans l
		 JOIN books b ON b.isbn = l.isbn
		 JOIN friends f ON f.id = l.friend_id
		 LEFT JOIN contacts c ON c.friend_id = f.id
		 WHERE l.returned_at IS NULL AND l.reminder_date = ?
		 ORDER BY l.due_date, l.id, c.type`,
		today.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("listing due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		var contactID sql.NullInt64
		var contactType, contactValue sql.NullString
		if err := rows.Scan(&r.LoanID, &r.ISBN, &r.Title, &r.DueDate,
			&r.FriendID, &r.FirstName, &r.LastName,
			&contactID, &contactType, &contactValue); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		r.ContactID = contactID.Int64
		r.ContactType = contactType.String
		r.ContactValue = contactValue.String
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// ClearReminder unsets a loan's reminder date so it no longer shows up in
// reminder scans. Clearing an already-clear reminder is a no-op, but the loan
// must exist.
func ClearReminder(ctx context.Context, db *sql.DB, loanID int64) error {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE id = ?`, loanID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking loan: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}

	if _, err := db.ExecContext(ctx,
		`UPDATE loans SET reminder_date = NULL WHERE id = ?`, loanID,
	); err != nil {
		return fmt.Errorf("clearing reminder: %w", err)
	}
	return nil
}
