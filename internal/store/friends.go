package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jvidmar/knjiznica/internal/model"
)

// CreateFriend creates a friend and an optional batch of contacts in one
// transaction. Contacts with a blank type or value are skipped.
func CreateFriend(ctx context.Context, db *sql.DB, firstName, lastName string, maxLoans int, contacts []model.Contact) (*model.Friend, error) {
	if maxLoans < 0 {
		return nil, fmt.Errorf("max loans must not be negative: %w", ErrConstraintViolation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO friends (first_name, last_name, max_loans) VALUES (?, ?, ?)`,
		firstName, lastName, maxLoans,
	)
	if err != nil {
		return nil, fmt.Errorf("creating friend: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting friend id: %w", err)
	}

	for _, c := range contacts {
		ctype := strings.TrimSpace(c.Type)
		value := strings.TrimSpace(c.Value)
		if ctype == "" || value == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (friend_id, type, value) VALUES (?, ?, ?)`,
			id, ctype, value,
		); err != nil {
			return nil, fmt.Errorf("creating contact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing friend creation: %w", err)
	}

	return GetFriend(ctx, db, id)
}

// GetFriend returns a friend by ID.
func GetFriend(ctx context.Context, db *sql.DB, id int64) (*model.Friend, error) {
	f := &model.Friend{}
	err := db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, max_loans, created_at
		 FROM friends WHERE id = ?`, id,
	).Scan(&f.ID, &f.FirstName, &f.LastName, &f.MaxLoans, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("friend %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend: %w", err)
	}
	return f, nil
}

// ListFriends returns all friends ordered by name.
func ListFriends(ctx context.Context, db *sql.DB) ([]model.Friend, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, first_name, last_name, max_loans, created_at
		 FROM friends ORDER BY first_name, last_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	var friends []model.Friend
	for rows.Next() {
		var f model.Friend
		if err := rows.Scan(&f.ID, &f.FirstName, &f.LastName, &f.MaxLoans, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// UpdateFriend updates a friend's name and loan capacity. The capacity cannot
// drop below the number of loans currently out.
func UpdateFriend(ctx context.Context, db *sql.DB, id int64, firstName, lastName string, maxLoans int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE friend_id = ? AND returned_at IS NULL`, id,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("checking open loans: %w", err)
	}
	if maxLoans < open {
		return fmt.Errorf("friend %d has %d loans out, capacity cannot drop to %d: %w", id, open, maxLoans, ErrConstraintViolation)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE friends SET first_name = ?, last_name = ?, max_loans = ? WHERE id = ?`,
		firstName, lastName, maxLoans, id,
	)
	if err != nil {
		return fmt.Errorf("updating friend: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("friend %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing friend update: %w", err)
	}
	return nil
}

// DeleteFriend removes a friend along with their contacts and closed-loan
// history. A friend with open loans cannot be deleted; returning the books
// first keeps availability consistent.
func DeleteFriend(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE friend_id = ? AND returned_at IS NULL`, id,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("checking open loans: %w", err)
	}
	if open > 0 {
		return fmt.Errorf("friend %d still has %d open loans: %w", id, open, ErrConstraintViolation)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE friend_id = ?`, id); err != nil {
		return fmt.Errorf("deleting contacts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE friend_id = ?`, id); err != nil {
		return fmt.Errorf("deleting loan history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM friends WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting friend: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("friend %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing friend deletion: %w", err)
	}
	return nil
}

// RemainingCapacity returns how many more books a friend may borrow, derived
// from max_loans minus the friend's open loans.
func RemainingCapacity(ctx context.Context, db *sql.DB, id int64) (int, error) {
	var maxLoans, open int
	err := db.QueryRowContext(ctx,
		`SELECT f.max_loans, COUNT(l.id)
		 FROM friends f
		 LEFT JOIN loans l ON l.friend_id = f.id AND l.returned_at IS NULL
		 WHERE f.id = ?
		 GROUP BY f.id`, id,
	).Scan(&maxLoans, &open)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("friend %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("getting remaining capacity: %w", err)
	}
	return maxLoans - open, nil
}
