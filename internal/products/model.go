package products

import "time"

// Product is a catalogue entry referenced by stock movements and order items.
// Order items snapshot the name at creation time, so renames never rewrite
// historical orders.
type Product struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CostMetadata *string   `json:"cost_metadata,omitempty" db:"cost_metadata"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
