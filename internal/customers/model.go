package customers

import "time"

// Customer owns an append-only status history and notes, both cascade-deleted
// with the customer.
type Customer struct {
	ID               int64            `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	PrimaryPhone     string           `json:"primary_phone" db:"primary_phone"`
	AdditionalPhones *string          `json:"additional_phones,omitempty" db:"additional_phones"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
	Statuses         []CustomerStatus `json:"statuses" db:"-"`
	Notes            []CustomerNote   `json:"notes" db:"-"`
}

// CustomerStatus is one entry in the historical status log. The current
// status is the most recent by assigned_at; older entries are kept.
type CustomerStatus struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	Status     string    `json:"status" db:"status"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
	AssignedBy int64     `json:"assigned_by" db:"assigned_by"`
}

// CustomerNote is a free-text annotation on a customer.
type CustomerNote struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	Note       string    `json:"note" db:"note"`
	CreatedBy  int64     `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
