package model

import "time"

// DefaultTagColor is assigned to tags auto-created through name resolution.
const DefaultTagColor = "#6b7280"

// Tag is a cross-board label for categorizing tickets, deduplicated
// globally by case-sensitive name.
type Tag struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Color       string    `json:"color" db:"color"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
