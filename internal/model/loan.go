package model

import "time"

// Loan represents one lending of a book to a friend. A loan is open while
// ReturnedAt is nil; returning stamps ReturnedAt and keeps the row as history.
type Loan struct {
	ID           int64      `json:"id"`
	ISBN         string     `json:"isbn"`
	FriendID     int64      `json:"friend_id"`
	BorrowDate   string     `json:"borrow_date"`
	DueDate      string     `json:"due_date"`
	ReminderDate string     `json:"reminder_date,omitempty"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	Title      string `json:"title,omitempty"`
	FriendName string `json:"friend_name,omitempty"`
}

// Open reports whether the loan has not been returned yet.
func (l *Loan) Open() bool {
	return l.ReturnedAt == nil
}

// Reminder is one row of the daily reminder scan: an open loan whose reminder
// date is today, paired with a single contact of the borrowing friend. A loan
// with N contacts yields N rows; callers group by LoanID.
type Reminder struct {
	LoanID    int64  `json:"loan_id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	FriendID  int64  `json:"friend_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Contact fields are zero-valued when the friend has no contacts.
	ContactID    int64  `json:"contact_id,omitempty"`
	ContactType  string `json:"contact_type,omitempty"`
	ContactValue string `json:"contact_value,omitempty"`
}
