package model

import "time"

// Friend represents a person who can borrow books.
type Friend struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	MaxLoans  int       `json:"max_loans"`
	CreatedAt time.Time `json:"created_at"`
}

// Name returns the friend's display name.
func (f *Friend) Name() string {
	return f.FirstName + " " + f.LastName
}

// Contact is a way to reach a friend (email, phone, ...). The type is free
// text in practice.
type Contact struct {
	ID       int64  `json:"id"`
	FriendID int64  `json:"friend_id"`
	Type     string `json:"type"`
	Value    string `json:"value"`
}
