package models

import "time"

// Todo is a free-standing task item.
type Todo struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
}
