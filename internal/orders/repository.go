package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caravel-dist/caravel-dist/internal/platform/db"
	"github.com/caravel-dist/caravel-dist/internal/shared"
	"github.com/caravel-dist/caravel-dist/internal/stock"
)

// Repository reads orders. All writes go through WithTx so that every
// lifecycle transition commits as one unit.
type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, customerID *int64) ([]Order, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the write surface available inside a transaction.
// MarkDelivered and MarkCancelled are compare-and-set: they return false when
// another transaction already moved the order out of the expected state, and
// the caller must treat that as an invalid transition rather than retry.
type TxRepository interface {
	InsertOrder(ctx context.Context, o Order) (int64, error)
	InsertItem(ctx context.Context, item OrderItem) (int64, error)
	ListItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	DeleteItems(ctx context.Context, orderID int64) error
	LockOpen(ctx context.Context, orderID int64) (bool, error)
	SetUpdatedBy(ctx context.Context, orderID, actorID int64) error
	MarkDelivered(ctx context.Context, orderID, actorID int64) (bool, error)
	MarkCancelled(ctx context.Context, orderID, actorID int64, reason string, allowDelivered bool) (bool, error)
	InsertMovement(ctx context.Context, m stock.Movement) (int64, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	InsertNote(ctx context.Context, n OrderNote) (int64, error)
	DeleteNote(ctx context.Context, orderID, noteID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, customer_id, created_by, updated_by, cancelled_by, cancellation_reason, delivered_at, delivered_by, is_cancelled, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, customerID *int64) ([]Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders`, orderColumns)
	var args []interface{}
	if customerID != nil {
		query += ` WHERE customer_id = $1`
		args = append(args, *customerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadChildren(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *repository) loadChildren(ctx context.Context, o *Order) error {
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	payments, err := r.loadPayments(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	notes, err := r.loadNotes(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	o.Items, o.Payments, o.Notes = items, payments, notes
	return nil
}

func (r *repository) loadItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return selectItems(ctx, r.pool, orderID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func selectItems(ctx context.Context, q querier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name_snapshot, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductNameSnapshot, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) loadPayments(ctx context.Context, orderID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, amount, payment_type, received_by, created_at
		FROM payments WHERE order_id = $1 ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		var p Payment
		var paymentType string
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &paymentType, &p.ReceivedBy, &createdAt); err != nil {
			return nil, err
		}
		p.PaymentType = PaymentType(paymentType)
		p.CreatedAt = createdAt.Time
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) loadNotes(ctx context.Context, orderID int64) ([]OrderNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, note, created_by, created_at
		FROM order_notes WHERE order_id = $1 ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []OrderNote{}
	for rows.Next() {
		var n OrderNote
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Note, &n.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = createdAt.Time
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) InsertOrder(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, created_by, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id
	`, o.CustomerID, o.CreatedBy).Scan(&id)
	return id, err
}

func (t *txRepository) InsertItem(ctx context.Context, item OrderItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name_snapshot, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, item.OrderID, item.ProductID, item.ProductNameSnapshot, item.Quantity, item.UnitPrice, item.TotalPrice).Scan(&id)
	return id, err
}

func (t *txRepository) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return selectItems(ctx, t.tx, orderID)
}

// LockOpen takes a row lock on the order and reports whether it is still
// open. It pins the order's state for the rest of the transaction, so a
// concurrent deliver or cancel cannot slip between the check and the writes
// that follow.
func (t *txRepository) LockOpen(ctx context.Context, orderID int64) (bool, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		SELECT id FROM orders
		WHERE id = $1 AND delivered_at IS NULL AND is_cancelled = FALSE
		FOR UPDATE
	`, orderID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *txRepository) DeleteItems(ctx context.Context, orderID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}

func (t *txRepository) SetUpdatedBy(ctx context.Context, orderID, actorID int64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE orders SET updated_by = $2, updated_at = NOW() WHERE id = $1
	`, orderID, actorID)
	return err
}

func (t *txRepository) MarkDelivered(ctx context.Context, orderID, actorID int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE orders
		SET delivered_at = NOW(), delivered_by = $2, updated_at = NOW()
		WHERE id = $1 AND delivered_at IS NULL AND is_cancelled = FALSE
	`, orderID, actorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *txRepository) MarkCancelled(ctx context.Context, orderID, actorID int64, reason string, allowDelivered bool) (bool, error) {
	query := `
		UPDATE orders
		SET is_cancelled = TRUE, cancelled_by = $2, cancellation_reason = $3, updated_at = NOW()
		WHERE id = $1 AND is_cancelled = FALSE`
	if !allowDelivered {
		query += ` AND delivered_at IS NULL`
	}
	tag, err := t.tx.Exec(ctx, query, orderID, actorID, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *txRepository) InsertMovement(ctx context.Context, m stock.Movement) (int64, error) {
	return stock.InsertMovementTx(ctx, t.tx, m)
}

func (t *txRepository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, payment_type, received_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`, p.OrderID, p.Amount, string(p.PaymentType), p.ReceivedBy).Scan(&id)
	return id, err
}

func (t *txRepository) InsertNote(ctx context.Context, n OrderNote) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO order_notes (order_id, note, created_by, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`, n.OrderID, n.Note, n.CreatedBy).Scan(&id)
	return id, err
}

func (t *txRepository) DeleteNote(ctx context.Context, orderID, noteID int64) error {
	tag, err := t.tx.Exec(ctx, `
		DELETE FROM order_notes WHERE id = $1 AND order_id = $2
	`, noteID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var updatedBy, cancelledBy, deliveredBy pgtype.Int8
	var cancellationReason pgtype.Text
	var deliveredAt, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.CustomerID, &o.CreatedBy, &updatedBy, &cancelledBy, &cancellationReason, &deliveredAt, &deliveredBy, &o.IsCancelled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedBy.Valid {
		o.UpdatedBy = &updatedBy.Int64
	}
	if cancelledBy.Valid {
		o.CancelledBy = &cancelledBy.Int64
	}
	if deliveredBy.Valid {
		o.DeliveredBy = &deliveredBy.Int64
	}
	if cancellationReason.Valid {
		o.CancellationReason = &cancellationReason.String
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	return &o, nil
}
