package shared

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityEntry represents a record stored in activity_logs.
type ActivityEntry struct {
	TableName string
	RecordID  int64
	Action    string
	ActorID   int64
	Details   string
}

// AuditPort is the injected collaborator every mutating service records through.
type AuditPort interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityLogger writes records into activity_logs.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry.
func (l *ActivityLogger) Record(ctx context.Context, entry ActivityEntry) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if entry.TableName == "" || entry.Action == "" {
		return errors.New("activity log requires table_name/action")
	}
	var details any
	if entry.Details != "" {
		details = entry.Details
	}
	_, err := l.pool.Exec(ctx, `INSERT INTO activity_logs (table_name, record_id, action, user_id, details, created_at) VALUES ($1, $2, $3, $4, $5, NOW())`, entry.TableName, entry.RecordID, entry.Action, entry.ActorID, details)
	return err
}
