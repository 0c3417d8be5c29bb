package stock

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

// Repository persists the stock ledger in PostgreSQL.
type Repository interface {
	Insert(ctx context.Context, m Movement) (int64, error)
	Get(ctx context.Context, id int64) (*Movement, error)
	List(ctx context.Context, productID *int64) ([]Movement, error)
	TotalStock(ctx context.Context, productID int64) (int64, error)
	ReservedStock(ctx context.Context, productID int64) (int64, error)
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

const movementColumns = `id, product_id, movement_type, quantity, total_cost, average_unit_cost, order_id, customer_id, description, created_by, created_at`

const insertMovementSQL = `
	INSERT INTO stock_movements (product_id, movement_type, quantity, total_cost, average_unit_cost, order_id, customer_id, description, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	RETURNING id`

func (r *repository) Insert(ctx context.Context, m Movement) (int64, error) {
	return insertMovement(ctx, r.db, m)
}

// InsertMovementTx appends a movement within an existing transaction. Used by
// the order lifecycle so delivery movements commit atomically with the order
// transition.
func InsertMovementTx(ctx context.Context, tx pgx.Tx, m Movement) (int64, error) {
	return insertMovement(ctx, tx, m)
}

func insertMovement(ctx context.Context, db dbtx, m Movement) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, insertMovementSQL,
		m.ProductID, string(m.MovementType), m.Quantity,
		floatOrNil(m.TotalCost), floatOrNil(m.AverageUnitCost),
		intOrNil(m.OrderID), intOrNil(m.CustomerID), textOrNil(m.Description),
		m.CreatedBy,
	).Scan(&id)
	return id, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Movement, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM stock_movements WHERE id = $1`, movementColumns), id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *repository) List(ctx context.Context, productID *int64) ([]Movement, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_movements`, movementColumns)
	var args []interface{}
	if productID != nil {
		query += ` WHERE product_id = $1`
		args = append(args, *productID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

func (r *repository) TotalStock(ctx context.Context, productID int64) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE product_id = $1
	`, productID).Scan(&total)
	return total, err
}

func (r *repository) ReservedStock(ctx context.Context, productID int64) (int64, error) {
	var reserved int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.product_id = $1
		  AND o.delivered_at IS NULL
		  AND o.is_cancelled = FALSE
	`, productID).Scan(&reserved)
	return reserved, err
}

func scanMovement(row pgx.Row) (*Movement, error) {
	var m Movement
	var movementType string
	var totalCost, avgCost pgtype.Float8
	var orderID, customerID pgtype.Int8
	var description pgtype.Text
	var createdAt pgtype.Timestamptz
	err := row.Scan(&m.ID, &m.ProductID, &movementType, &m.Quantity, &totalCost, &avgCost, &orderID, &customerID, &description, &m.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	m.MovementType = MovementType(movementType)
	if totalCost.Valid {
		m.TotalCost = &totalCost.Float64
	}
	if avgCost.Valid {
		m.AverageUnitCost = &avgCost.Float64
	}
	if orderID.Valid {
		m.OrderID = &orderID.Int64
	}
	if customerID.Valid {
		m.CustomerID = &customerID.Int64
	}
	if description.Valid {
		m.Description = &description.String
	}
	m.CreatedAt = createdAt.Time
	return &m, nil
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func intOrNil(i *int64) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func textOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
