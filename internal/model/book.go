package model

import "time"

// Book represents a single physical book, keyed by ISBN.
type Book struct {
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre,omitempty"`
	Condition     string    `json:"condition"`
	ShelfLocation string    `json:"shelf_location,omitempty"`
	ShelfRow      string    `json:"shelf_row,omitempty"`
	InStock       bool      `json:"in_stock"`
	CoverMime     string    `json:"cover_mime,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Book conditions.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
)

// ValidCondition reports whether c is a known book condition.
func ValidCondition(c string) bool {
	return c == ConditionExcellent || c == ConditionGood || c == ConditionFair
}
