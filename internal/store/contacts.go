package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jvidmar/knjiznica/internal/model"
)

// AddContact adds a contact method to an existing friend.
func AddContact(ctx context.Context, db *sql.DB, friendID int64, ctype, value string) (*model.Contact, error) {
	ctype = strings.TrimSpace(ctype)
	value = strings.TrimSpace(value)
	if ctype == "" || value == "" {
		return nil, fmt.Errorf("contact type and value must not be blank: %w", ErrConstraintViolation)
	}

	if _, err := GetFriend(ctx, db, friendID); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO contacts (friend_id, type, value) VALUES (?, ?, ?)`,
		friendID, ctype, value,
	)
	if err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting contact id: %w", err)
	}

	return &model.Contact{ID: id, FriendID: friendID, Type: ctype, Value: value}, nil
}

// ListContacts returns all contact methods for a friend.
func ListContacts(ctx context.Context, db *sql.DB, friendID int64) ([]model.Contact, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, friend_id, type, value FROM contacts WHERE friend_id = ? ORDER BY type, value`,
		friendID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.FriendID, &c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// DeleteContact removes a single contact entry.
func DeleteContact(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	return nil
}
