package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPageSize = 50
const maxPageSize = 200

// Repository reads the activity feed.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT id, table_name, record_id, action, user_id, details, created_at FROM activity_logs`
	var args []interface{}
	i := 1
	if f.TableName != "" {
		query += fmt.Sprintf(` WHERE table_name = $%d`, i)
		args = append(args, f.TableName)
		i++
		if f.RecordID > 0 {
			query += fmt.Sprintf(` AND record_id = $%d`, i)
			args = append(args, f.RecordID)
			i++
		}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, i, i+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var details pgtype.Text
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &e.Action, &e.UserID, &details, &createdAt); err != nil {
			return nil, err
		}
		if details.Valid {
			e.Details = &details.String
		}
		e.CreatedAt = createdAt.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
