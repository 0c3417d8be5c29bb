package stock

type CreateMovementRequest struct {
	ProductID    int64        `json:"product_id" validate:"required,gt=0"`
	MovementType MovementType `json:"movement_type" validate:"required"`
	Quantity     int64        `json:"quantity" validate:"required"`
	TotalCost    *float64     `json:"total_cost,omitempty" validate:"omitempty,gte=0"`
	OrderID      *int64       `json:"order_id,omitempty" validate:"omitempty,gt=0"`
	CustomerID   *int64       `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Description  *string      `json:"description,omitempty"`
}
