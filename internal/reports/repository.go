package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries behind each report.
type Repository interface {
	DashboardSummary(ctx context.Context) (DashboardSummary, error)
	CustomerRevenue(ctx context.Context) ([]CustomerRevenueRow, error)
	StockLevels(ctx context.Context) ([]StockRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE delivered_at IS NULL AND is_cancelled = FALSE),
			COUNT(*) FILTER (WHERE delivered_at IS NOT NULL),
			COUNT(*) FILTER (WHERE is_cancelled)
		FROM orders
	`).Scan(&s.TotalOrders, &s.PendingDeliveriesCount, &s.DeliveredOrders, &s.CancelledOrders)
	if err != nil {
		return s, err
	}

	// An order is pending payment while its item total exceeds what has been
	// paid so far. Cancelled orders never count, whatever their balance.
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orders o
		WHERE o.is_cancelled = FALSE
		  AND COALESCE((SELECT SUM(oi.total_price) FROM order_items oi WHERE oi.order_id = o.id), 0)
		    > COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.order_id = o.id), 0)
	`).Scan(&s.PendingPaymentsCount)
	if err != nil {
		return s, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(oi.total_price), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.is_cancelled = FALSE
	`).Scan(&s.TotalOrderValue)
	if err != nil {
		return s, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.is_cancelled = FALSE
	`).Scan(&s.TotalRevenue)
	if err != nil {
		return s, err
	}
	s.OutstandingAmount = s.TotalOrderValue - s.TotalRevenue

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&s.ActiveCustomers)
	if err != nil {
		return s, err
	}
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active = TRUE`).Scan(&s.ActiveProducts)
	return s, err
}

func (r *repository) CustomerRevenue(ctx context.Context) ([]CustomerRevenueRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			c.id,
			c.name,
			COUNT(DISTINCT o.id),
			COALESCE(SUM(oi.total_price), 0),
			COALESCE((
				SELECT SUM(p.amount)
				FROM payments p
				JOIN orders po ON po.id = p.order_id
				WHERE po.customer_id = c.id AND po.is_cancelled = FALSE
			), 0) AS revenue
		FROM customers c
		LEFT JOIN orders o ON o.customer_id = c.id AND o.is_cancelled = FALSE
		LEFT JOIN order_items oi ON oi.order_id = o.id
		GROUP BY c.id, c.name
		ORDER BY revenue DESC, c.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerRevenueRow
	for rows.Next() {
		var row CustomerRevenueRow
		if err := rows.Scan(&row.CustomerID, &row.CustomerName, &row.OrderCount, &row.TotalOrderValue, &row.TotalRevenue); err != nil {
			return nil, err
		}
		row.OutstandingAmount = row.TotalOrderValue - row.TotalRevenue
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) StockLevels(ctx context.Context) ([]StockRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			p.id,
			p.name,
			p.category,
			COALESCE((SELECT SUM(sm.quantity) FROM stock_movements sm WHERE sm.product_id = p.id), 0),
			COALESCE((
				SELECT SUM(oi.quantity)
				FROM order_items oi
				JOIN orders o ON o.id = oi.order_id
				WHERE oi.product_id = p.id
				  AND o.delivered_at IS NULL
				  AND o.is_cancelled = FALSE
			), 0)
		FROM products p
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockRow
	for rows.Next() {
		var row StockRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.Category, &row.TotalStock, &row.ReservedStock); err != nil {
			return nil, err
		}
		row.AvailableStock = row.TotalStock - row.ReservedStock
		out = append(out, row)
	}
	return out, rows.Err()
}
