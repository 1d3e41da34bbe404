package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jvidmar/knjiznica/internal/db"
	"github.com/jvidmar/knjiznica/internal/model"
)

func TestCreateFriendWithContacts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	friend, err := CreateFriend(ctx, database, "Liane", "Novak", 3, []model.Contact{
		{Type: "email", Value: "liane@example.com"},
		{Type: "phone", Value: "041123456"},
		{Type: "", Value: ""}, // blank rows from the form are dropped
		{Type: "email", Value: "   "},
	})
	if err != nil {
		t.Fatalf("CreateFriend: %v", err)
	}
	if friend.Name() != "Liane Novak" {
		t.Errorf("Name() = %q, want %q", friend.Name(), "Liane Novak")
	}
	if friend.MaxLoans != 3 {
		t.Errorf("MaxLoans = %d, want 3", friend.MaxLoans)
	}

	contacts, err := ListContacts(ctx, database, friend.ID)
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
}

func TestCreateFriendNegativeCapacity(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateFriend(context.Background(), database, "Liane", "Novak", -1, nil)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestGetFriendNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetFriend(context.Background(), database, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFriend(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	friend := addFriend(t, database, "Liane", 3)

	if err := UpdateFriend(ctx, database, friend.ID, "Liane", "Kovac", 5); err != nil {
		t.Fatalf("UpdateFriend: %v", err)
	}

	got, _ := GetFriend(ctx, database, friend.ID)
	if got.LastName != "Kovac" || got.MaxLoans != 5 {
		t.Errorf("unexpected friend after update: %+v", got)
	}

	if err := UpdateFriend(ctx, database, 999, "X", "Y", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown friend, got %v", err)
	}
}

func TestUpdateFriendCapacityBelowOpenLoans(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addBook(t, database, "111", "Dune")
	addBook(t, database, "222", "Hyperion")
	friend := addFriend(t, database, "Liane", 3)

	Borrow(ctx, database, "111", friend.ID, date("2024-01-01"), date("2024-01-15"), nil)
	Borrow(ctx, database, "222", friend.ID, date("2024-01-01"), date("2024-01-15"), nil)

	err := UpdateFriend(ctx, database, friend.ID, "Liane", "Tester", 1)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	// Dropping to exactly the open count is fine.
	if err := UpdateFriend(ctx, database, friend.ID, "Liane", "Tester", 2); err != nil {
		t.Fatalf("UpdateFriend to open count: %v", err)
	}
	remaining, _ := RemainingCapacity(ctx, database, friend.ID)
	if remaining != 0 {
		t.Errorf("expected remaining capacity 0, got %d", remaining)
	}
}

func TestDeleteFriendWithOpenLoansFails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addBook(t, database, "111", "Dune")
	friend := addFriend(t, database, "Liane", 3)

	Borrow(ctx, database, "111", friend.ID, date("2024-01-01"), date("2024-01-15"), nil)

	err := DeleteFriend(ctx, database, friend.ID)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	if _, err := GetFriend(ctx, database, friend.ID); err != nil {
		t.Errorf("expected friend to still exist: %v", err)
	}
}

func TestDeleteFriendCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addBook(t, database, "111", "Dune")
	friend, err := CreateFriend(ctx, database, "Liane", "Novak", 3, []model.Contact{
		{Type: "email", Value: "liane@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateFriend: %v", err)
	}

	Borrow(ctx, database, "111", friend.ID, date("2024-01-01"), date("2024-01-15"), nil)
	Return(ctx, database, "111", friend.ID)

	if err := DeleteFriend(ctx, database, friend.ID); err != nil {
		t.Fatalf("DeleteFriend: %v", err)
	}
	if _, err := GetFriend(ctx, database, friend.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected friend gone, got %v", err)
	}

	// Contacts and loan history go with the friend; the book stays.
	var contacts, loans int
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE friend_id = ?`, friend.ID).Scan(&contacts)
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM loans WHERE friend_id = ?`, friend.ID).Scan(&loans)
	if contacts != 0 || loans != 0 {
		t.Errorf("expected contacts and loans removed, got %d contacts and %d loans", contacts, loans)
	}
	book, err := GetBook(ctx, database, "111")
	if err != nil || !book.InStock {
		t.Errorf("expected book to remain in stock, got %+v (%v)", book, err)
	}
}

func TestAddAndDeleteContact(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	friend := addFriend(t, database, "Liane", 3)

	contact, err := AddContact(ctx, database, friend.ID, "email", "liane@example.com")
	if err != nil {
		t.Fatalf("AddContact: %v", err)
	}

	if _, err := AddContact(ctx, database, friend.ID, "", "x"); !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation for blank type, got %v", err)
	}
	if _, err := AddContact(ctx, database, 999, "email", "x@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown friend, got %v", err)
	}

	if err := DeleteContact(ctx, database, contact.ID); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	contacts, _ := ListContacts(ctx, database, friend.ID)
	if len(contacts) != 0 {
		t.Errorf("expected no contacts left, got %d", len(contacts))
	}

	if err := DeleteContact(ctx, database, contact.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
