package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/caravel-dist/caravel-dist/internal/products"
	"github.com/caravel-dist/caravel-dist/internal/shared"
)

// ProductCatalog resolves product references before a movement is recorded.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (*products.Product, error)
}

// Service coordinates ledger writes and derived stock queries.
type Service struct {
	repo    Repository
	catalog ProductCatalog
	audit   shared.AuditPort
}

func NewService(repo Repository, catalog ProductCatalog, audit shared.AuditPort) *Service {
	return &Service{repo: repo, catalog: catalog, audit: audit}
}

// Record appends one movement. The ledger accepts any signed quantity; it
// never rejects a movement for driving stock negative.
func (s *Service) Record(ctx context.Context, input MovementInput) (*Movement, error) {
	if !input.MovementType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, input.MovementType)
	}
	if input.Quantity == 0 {
		return nil, ErrZeroQuantity
	}
	if _, err := s.catalog.Get(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("verify product: %w", err)
	}

	m := Movement{
		ProductID:       input.ProductID,
		MovementType:    input.MovementType,
		Quantity:        input.Quantity,
		TotalCost:       input.TotalCost,
		AverageUnitCost: AverageUnitCost(input.TotalCost, input.Quantity),
		OrderID:         input.OrderID,
		CustomerID:      input.CustomerID,
		Description:     input.Description,
		CreatedBy:       input.ActorID,
	}

	id, err := s.repo.Insert(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}

	if s.audit != nil {
		action := "stock_" + strings.ToLower(string(input.MovementType))
		_ = s.audit.Record(ctx, shared.ActivityEntry{
			TableName: "stock_movements",
			RecordID:  id,
			Action:    action,
			ActorID:   input.ActorID,
		})
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Movement, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, productID *int64) ([]Movement, error) {
	return s.repo.List(ctx, productID)
}

// Level derives total, reserved and available stock for one product.
func (s *Service) Level(ctx context.Context, productID int64) (Level, error) {
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return Level{}, fmt.Errorf("verify product: %w", err)
	}
	total, err := s.repo.TotalStock(ctx, productID)
	if err != nil {
		return Level{}, err
	}
	reserved, err := s.repo.ReservedStock(ctx, productID)
	if err != nil {
		return Level{}, err
	}
	return Level{ProductID: productID, Total: total, Reserved: reserved}, nil
}

// AverageUnitCost returns totalCost / |quantity|, or nil when either input is
// absent or zero.
func AverageUnitCost(totalCost *float64, quantity int64) *float64 {
	if totalCost == nil || quantity == 0 {
		return nil
	}
	qty := quantity
	if qty < 0 {
		qty = -qty
	}
	avg := *totalCost / float64(qty)
	return &avg
}
