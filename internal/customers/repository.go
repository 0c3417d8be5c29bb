package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, c Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	HasStatus(ctx context.Context, customerID int64, status string) (bool, error)
	AddStatus(ctx context.Context, st CustomerStatus) (int64, error)
	GetStatus(ctx context.Context, customerID, statusID int64) (*CustomerStatus, error)
	RemoveStatus(ctx context.Context, customerID, statusID int64) error
	AddNote(ctx context.Context, n CustomerNote) (int64, error)
	DeleteNote(ctx context.Context, customerID, noteID int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, primary_phone, additional_phones, created_at, updated_at
		FROM customers WHERE id = $1
	`, id)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if c.Statuses, err = r.listStatuses(ctx, id); err != nil {
		return nil, err
	}
	if c.Notes, err = r.listNotes(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, primary_phone, additional_phones, created_at, updated_at
		FROM customers ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].Statuses, err = r.listStatuses(ctx, customers[i].ID); err != nil {
			return nil, err
		}
		if customers[i].Notes, err = r.listNotes(ctx, customers[i].ID); err != nil {
			return nil, err
		}
	}
	return customers, nil
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (name, primary_phone, additional_phones, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`, c.Name, c.PrimaryPhone, textOrNil(c.AdditionalPhones)).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE customers SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "primary_phone", "additional_phones"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) HasStatus(ctx context.Context, customerID int64, status string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM customer_statuses WHERE customer_id = $1 AND status = $2)
	`, customerID, status).Scan(&exists)
	return exists, err
}

func (r *repository) AddStatus(ctx context.Context, st CustomerStatus) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customer_statuses (customer_id, status, assigned_at, assigned_by)
		VALUES ($1, $2, NOW(), $3)
		RETURNING id
	`, st.CustomerID, st.Status, st.AssignedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) GetStatus(ctx context.Context, customerID, statusID int64) (*CustomerStatus, error) {
	var st CustomerStatus
	var assignedAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT id, customer_id, status, assigned_at, assigned_by
		FROM customer_statuses WHERE id = $1 AND customer_id = $2
	`, statusID, customerID).Scan(&st.ID, &st.CustomerID, &st.Status, &assignedAt, &st.AssignedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	st.AssignedAt = assignedAt.Time
	return &st, nil
}

func (r *repository) RemoveStatus(ctx context.Context, customerID, statusID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM customer_statuses WHERE id = $1 AND customer_id = $2
	`, statusID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AddNote(ctx context.Context, n CustomerNote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customer_notes (customer_id, note, created_by, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`, n.CustomerID, n.Note, n.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) DeleteNote(ctx context.Context, customerID, noteID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM customer_notes WHERE id = $1 AND customer_id = $2
	`, noteID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) listStatuses(ctx context.Context, customerID int64) ([]CustomerStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customer_id, status, assigned_at, assigned_by
		FROM customer_statuses WHERE customer_id = $1 ORDER BY assigned_at, id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []CustomerStatus{}
	for rows.Next() {
		var st CustomerStatus
		var assignedAt pgtype.Timestamptz
		if err := rows.Scan(&st.ID, &st.CustomerID, &st.Status, &assignedAt, &st.AssignedBy); err != nil {
			return nil, err
		}
		st.AssignedAt = assignedAt.Time
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (r *repository) listNotes(ctx context.Context, customerID int64) ([]CustomerNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customer_id, note, created_by, created_at
		FROM customer_notes WHERE customer_id = $1 ORDER BY created_at, id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []CustomerNote{}
	for rows.Next() {
		var n CustomerNote
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&n.ID, &n.CustomerID, &n.Note, &n.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = createdAt.Time
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var additionalPhones pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&c.ID, &c.Name, &c.PrimaryPhone, &additionalPhones, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if additionalPhones.Valid {
		c.AdditionalPhones = &additionalPhones.String
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func textOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
