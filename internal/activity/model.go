package activity

import "time"

// Entry is one row of the append-only activity feed. Writes happen through
// the shared activity logger; this package only reads.
type Entry struct {
	ID        int64     `json:"id" db:"id"`
	TableName string    `json:"table_name" db:"table_name"`
	RecordID  int64     `json:"record_id" db:"record_id"`
	Action    string    `json:"action" db:"action"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Filter narrows the feed. Zero values mean no constraint.
type Filter struct {
	TableName string
	RecordID  int64
	Limit     int
	Offset    int
}
