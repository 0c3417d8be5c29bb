package orders

import "time"

// Order is the aggregate root for items, payments and notes, all of which it
// owns exclusively. Lifecycle flags (is_cancelled, delivered_at) are stored
// and are the source of truth for state transitions; financial aggregates are
// recomputed from items and payments on every read and never persisted.
type Order struct {
	ID                 int64       `json:"id" db:"id"`
	CustomerID         int64       `json:"customer_id" db:"customer_id"`
	CreatedBy          int64       `json:"created_by" db:"created_by"`
	UpdatedBy          *int64      `json:"updated_by,omitempty" db:"updated_by"`
	CancelledBy        *int64      `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CancellationReason *string     `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	DeliveredAt        *time.Time  `json:"delivered_at,omitempty" db:"delivered_at"`
	DeliveredBy        *int64      `json:"delivered_by,omitempty" db:"delivered_by"`
	IsCancelled        bool        `json:"is_cancelled" db:"is_cancelled"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
	Items              []OrderItem `json:"items" db:"-"`
	Payments           []Payment   `json:"payments" db:"-"`
	Notes              []OrderNote `json:"notes" db:"-"`
}

// OrderItem carries a snapshot of the product name taken at creation time, so
// later renames do not rewrite order history. Items are replaced wholesale,
// never patched.
type OrderItem struct {
	ID                  int64   `json:"id" db:"id"`
	OrderID             int64   `json:"order_id" db:"order_id"`
	ProductID           int64   `json:"product_id" db:"product_id"`
	ProductNameSnapshot string  `json:"product_name_snapshot" db:"product_name_snapshot"`
	Quantity            int64   `json:"quantity" db:"quantity"`
	UnitPrice           float64 `json:"unit_price" db:"unit_price"`
	TotalPrice          float64 `json:"total_price" db:"total_price"`
}

// PaymentType enumerates how a payment was received.
type PaymentType string

const (
	PaymentCash     PaymentType = "CASH"
	PaymentTransfer PaymentType = "TRANSFER"
)

// Payment is append-only; there is no edit or void operation.
type Payment struct {
	ID          int64       `json:"id" db:"id"`
	OrderID     int64       `json:"order_id" db:"order_id"`
	Amount      float64     `json:"amount" db:"amount"`
	PaymentType PaymentType `json:"payment_type" db:"payment_type"`
	ReceivedBy  int64       `json:"received_by" db:"received_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// OrderNote is a free-text annotation; appending is legal in every state.
type OrderNote struct {
	ID        int64     `json:"id" db:"id"`
	OrderID   int64     `json:"order_id" db:"order_id"`
	Note      string    `json:"note" db:"note"`
	CreatedBy int64     `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsOpen reports whether the order still accepts item changes and delivery.
func (o *Order) IsOpen() bool {
	return !o.IsCancelled && o.DeliveredAt == nil
}

// TotalAmount sums the stored item totals.
func (o *Order) TotalAmount() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	return total
}

// PaidAmount sums every recorded payment.
func (o *Order) PaidAmount() float64 {
	var paid float64
	for _, p := range o.Payments {
		paid += p.Amount
	}
	return paid
}

// RemainingAmount is TotalAmount minus PaidAmount; negative when overpaid.
func (o *Order) RemainingAmount() float64 {
	return o.TotalAmount() - o.PaidAmount()
}

// IsFullyPaid reports whether nothing remains to pay.
func (o *Order) IsFullyPaid() bool {
	return o.RemainingAmount() <= 0
}

// IsDelivered reports whether the order has been delivered.
func (o *Order) IsDelivered() bool {
	return o.DeliveredAt != nil
}

// IsFullyCompleted reports delivered and fully paid.
func (o *Order) IsFullyCompleted() bool {
	return o.IsDelivered() && o.IsFullyPaid()
}
