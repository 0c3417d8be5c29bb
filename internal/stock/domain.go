package stock

import (
	"errors"
	"fmt"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementPurchase represents stock bought in from a supplier.
	MovementPurchase MovementType = "PURCHASE"
	// MovementDelivery represents stock leaving for a delivered order.
	MovementDelivery MovementType = "DELIVERY"
	// MovementPromotion represents stock given away as promotion.
	MovementPromotion MovementType = "PROMOTION"
	// MovementTester represents stock consumed as testers.
	MovementTester MovementType = "TESTER"
	// MovementWaste represents spoiled or discarded stock.
	MovementWaste MovementType = "WASTE"
	// MovementManualAdjustment represents a manual correction.
	MovementManualAdjustment MovementType = "MANUAL_ADJUSTMENT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementDelivery, MovementPromotion, MovementTester, MovementWaste, MovementManualAdjustment:
		return true
	}
	return false
}

// Movement is one signed quantity-change event in the ledger. Movements are
// immutable once created; there is no update or delete path.
type Movement struct {
	ID              int64        `json:"id"`
	ProductID       int64        `json:"product_id"`
	MovementType    MovementType `json:"movement_type"`
	Quantity        int64        `json:"quantity"`
	TotalCost       *float64     `json:"total_cost,omitempty"`
	AverageUnitCost *float64     `json:"average_unit_cost,omitempty"`
	OrderID         *int64       `json:"order_id,omitempty"`
	CustomerID      *int64       `json:"customer_id,omitempty"`
	Description     *string      `json:"description,omitempty"`
	CreatedBy       int64        `json:"created_by"`
	CreatedAt       time.Time    `json:"created_at"`
}

// MovementInput describes a movement to record. Positive quantity is stock
// in, negative is stock out.
type MovementInput struct {
	ProductID    int64
	MovementType MovementType
	Quantity     int64
	TotalCost    *float64
	OrderID      *int64
	CustomerID   *int64
	Description  *string
	ActorID      int64
}

// Level summarises stock availability for one product. Available can go
// negative when oversold; the ledger is an event log, not a reservation
// system.
type Level struct {
	ProductID int64 `json:"product_id"`
	Total     int64 `json:"total_stock"`
	Reserved  int64 `json:"reserved_stock"`
}

// Available returns total minus reserved.
func (l Level) Available() int64 {
	return l.Total - l.Reserved
}

// DeliveryMovement builds the outbound movement posted when an order item is
// delivered.
func DeliveryMovement(productID, quantity, orderID, actorID int64) Movement {
	desc := fmt.Sprintf("Delivery for order #%d", orderID)
	oid := orderID
	return Movement{
		ProductID:    productID,
		MovementType: MovementDelivery,
		Quantity:     -quantity,
		OrderID:      &oid,
		Description:  &desc,
		CreatedBy:    actorID,
	}
}

// ReversalMovement builds the compensating movement posted when a delivered
// order is cancelled under the "reverse" policy.
func ReversalMovement(productID, quantity, orderID, actorID int64) Movement {
	desc := fmt.Sprintf("Reversal for cancelled order #%d", orderID)
	oid := orderID
	return Movement{
		ProductID:    productID,
		MovementType: MovementDelivery,
		Quantity:     quantity,
		OrderID:      &oid,
		Description:  &desc,
		CreatedBy:    actorID,
	}
}

// ErrZeroQuantity indicates a movement with no quantity change.
var ErrZeroQuantity = errors.New("stock: quantity must be non zero")

// ErrUnknownType indicates an unsupported movement type.
var ErrUnknownType = errors.New("stock: unknown movement type")
