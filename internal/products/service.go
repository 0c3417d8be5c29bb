package products

import (
	"context"
	"fmt"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

// Service coordinates product catalogue operations.
type Service struct {
	repo  Repository
	audit shared.AuditPort
}

func NewService(repo Repository, audit shared.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest, actorID int64) (*Product, error) {
	id, err := s.repo.Create(ctx, Product{
		Name:         req.Name,
		Category:     req.Category,
		CostMetadata: req.CostMetadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.recordActivity(ctx, id, "created", actorID)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest, actorID int64) (*Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.CostMetadata != nil {
		updates["cost_metadata"] = *req.CostMetadata
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}
	}
	s.recordActivity(ctx, id, "updated", actorID)
	return s.repo.Get(ctx, id)
}

func (s *Service) recordActivity(ctx context.Context, id int64, action string, actorID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.ActivityEntry{
		TableName: "products",
		RecordID:  id,
		Action:    action,
		ActorID:   actorID,
	})
}
