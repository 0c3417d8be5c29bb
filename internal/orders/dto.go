package orders

type OrderItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerID int64              `json:"customer_id" validate:"required,gt=0"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest replaces the full item list when Items is present.
type UpdateOrderRequest struct {
	Items *[]OrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

type CancelOrderRequest struct {
	CancellationReason string `json:"cancellation_reason" validate:"required"`
}

type AddPaymentRequest struct {
	Amount      float64     `json:"amount" validate:"required,gt=0"`
	PaymentType PaymentType `json:"payment_type" validate:"required,oneof=CASH TRANSFER"`
}

type AddNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

// OrderResponse decorates the stored order with the derived financial and
// lifecycle fields every read returns.
type OrderResponse struct {
	*Order
	TotalAmount      float64 `json:"total_amount"`
	PaidAmount       float64 `json:"paid_amount"`
	RemainingAmount  float64 `json:"remaining_amount"`
	IsFullyPaid      bool    `json:"is_fully_paid"`
	IsDelivered      bool    `json:"is_delivered"`
	IsFullyCompleted bool    `json:"is_fully_completed"`
}

func NewOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		Order:            o,
		TotalAmount:      o.TotalAmount(),
		PaidAmount:       o.PaidAmount(),
		RemainingAmount:  o.RemainingAmount(),
		IsFullyPaid:      o.IsFullyPaid(),
		IsDelivered:      o.IsDelivered(),
		IsFullyCompleted: o.IsFullyCompleted(),
	}
}

func NewOrderResponses(list []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, NewOrderResponse(&list[i]))
	}
	return out
}
