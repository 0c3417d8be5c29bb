package reports

// DashboardSummary is the operational overview. Revenue is the sum of
// recorded payments; order value is the sum of item totals. Both exclude
// cancelled orders entirely.
type DashboardSummary struct {
	TotalOrders            int64   `json:"total_orders"`
	PendingDeliveriesCount int64   `json:"pending_deliveries_count"`
	DeliveredOrders        int64   `json:"delivered_orders"`
	CancelledOrders        int64   `json:"cancelled_orders"`
	PendingPaymentsCount   int64   `json:"pending_payments_count"`
	TotalRevenue           float64 `json:"total_revenue"`
	TotalOrderValue        float64 `json:"total_order_value"`
	OutstandingAmount      float64 `json:"outstanding_amount"`
	ActiveCustomers        int64   `json:"active_customers"`
	ActiveProducts         int64   `json:"active_products"`
}

// CustomerRevenueRow aggregates one customer's non-cancelled orders. A
// customer with no such orders still gets a row with zeroes.
type CustomerRevenueRow struct {
	CustomerID        int64   `json:"customer_id"`
	CustomerName      string  `json:"customer_name"`
	OrderCount        int64   `json:"order_count"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrderValue   float64 `json:"total_order_value"`
	OutstandingAmount float64 `json:"outstanding_amount"`
}

// StockRow reports one product's ledger position. Available can go negative
// when open orders reserve more than is on hand.
type StockRow struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	Category       string `json:"category"`
	TotalStock     int64  `json:"total_stock"`
	ReservedStock  int64  `json:"reserved_stock"`
	AvailableStock int64  `json:"available_stock"`
}
