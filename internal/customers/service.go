package customers

import (
	"context"
	"fmt"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

// Service coordinates customer master data and its append-only annotations.
type Service struct {
	repo  Repository
	audit shared.AuditPort
}

func NewService(repo Repository, audit shared.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, actorID int64) (*Customer, error) {
	id, err := s.repo.Create(ctx, Customer{
		Name:             req.Name,
		PrimaryPhone:     req.PrimaryPhone,
		AdditionalPhones: req.AdditionalPhones,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.recordActivity(ctx, "customers", id, "created", actorID, "")
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest, actorID int64) (*Customer, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PrimaryPhone != nil {
		updates["primary_phone"] = *req.PrimaryPhone
	}
	if req.AdditionalPhones != nil {
		updates["additional_phones"] = *req.AdditionalPhones
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update customer: %w", err)
		}
	}
	s.recordActivity(ctx, "customers", id, "updated", actorID, "")
	return s.repo.Get(ctx, id)
}

// AddStatus appends a status to the customer's historical log. Assigning a
// status value the customer already carries fails with a conflict.
func (s *Service) AddStatus(ctx context.Context, customerID int64, req AddStatusRequest, actorID int64) error {
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return err
	}
	exists, err := s.repo.HasStatus(ctx, customerID, req.Status)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: status already assigned", shared.ErrConflict)
	}

	id, err := s.repo.AddStatus(ctx, CustomerStatus{
		CustomerID: customerID,
		Status:     req.Status,
		AssignedBy: actorID,
	})
	if err != nil {
		return fmt.Errorf("add status: %w", err)
	}
	s.recordActivity(ctx, "customer_statuses", id, "status_added", actorID, "Status: "+req.Status)
	return nil
}

func (s *Service) RemoveStatus(ctx context.Context, customerID, statusID int64, actorID int64) error {
	st, err := s.repo.GetStatus(ctx, customerID, statusID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveStatus(ctx, customerID, statusID); err != nil {
		return err
	}
	s.recordActivity(ctx, "customer_statuses", statusID, "status_removed", actorID, "Status: "+st.Status)
	return nil
}

func (s *Service) AddNote(ctx context.Context, customerID int64, req AddNoteRequest, actorID int64) error {
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return err
	}
	id, err := s.repo.AddNote(ctx, CustomerNote{
		CustomerID: customerID,
		Note:       req.Note,
		CreatedBy:  actorID,
	})
	if err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	s.recordActivity(ctx, "customer_notes", id, "note_added", actorID, "")
	return nil
}

func (s *Service) DeleteNote(ctx context.Context, customerID, noteID int64, actorID int64) error {
	if err := s.repo.DeleteNote(ctx, customerID, noteID); err != nil {
		return err
	}
	s.recordActivity(ctx, "customer_notes", noteID, "note_deleted", actorID, "")
	return nil
}

func (s *Service) recordActivity(ctx context.Context, table string, id int64, action string, actorID int64, details string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.ActivityEntry{
		TableName: table,
		RecordID:  id,
		Action:    action,
		ActorID:   actorID,
		Details:   details,
	})
}
