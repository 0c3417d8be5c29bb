package orders

import (
	"context"
	"fmt"
	"strconv"

	"github.com/caravel-dist/caravel-dist/internal/customers"
	"github.com/caravel-dist/caravel-dist/internal/products"
	"github.com/caravel-dist/caravel-dist/internal/shared"
	"github.com/caravel-dist/caravel-dist/internal/stock"
)

// ProductCatalog resolves products when items are created or replaced.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (*products.Product, error)
}

// CustomerDirectory resolves the customer an order is placed for.
type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
}

// Cancellation policies for delivered orders. Forbid rejects the cancel;
// reverse accepts it and posts compensating stock movements.
const (
	CancelPolicyForbid  = "forbid"
	CancelPolicyReverse = "reverse"
)

// CacheInvalidator bumps derived report caches after a write that changes
// revenue or stock figures. A nil invalidator is a no-op.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service owns the order lifecycle. Every transition validates against the
// current state before writing, and the repository's compare-and-set guards
// close the gap between that check and the commit.
type Service struct {
	repo         Repository
	catalog      ProductCatalog
	directory    CustomerDirectory
	audit        shared.AuditPort
	cache        CacheInvalidator
	cancelPolicy string
}

func NewService(repo Repository, catalog ProductCatalog, directory CustomerDirectory, audit shared.AuditPort, cache CacheInvalidator, cancelPolicy string) *Service {
	if cancelPolicy == "" {
		cancelPolicy = CancelPolicyForbid
	}
	return &Service{
		repo:         repo,
		catalog:      catalog,
		directory:    directory,
		audit:        audit,
		cache:        cache,
		cancelPolicy: cancelPolicy,
	}
}

// Create validates the customer and every referenced product before any row
// is written, then inserts the order and its items in one transaction. Item
// totals and name snapshots are fixed here and never recomputed.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, actorID int64) (*Order, error) {
	if _, err := s.directory.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var orderID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertOrder(ctx, Order{CustomerID: req.CustomerID, CreatedBy: actorID})
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID = id
		for _, item := range items {
			item.OrderID = id
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, orderID, "created", actorID, "")
	s.bump(ctx)
	return s.repo.Get(ctx, orderID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, customerID *int64) ([]Order, error) {
	return s.repo.List(ctx, customerID)
}

// Update replaces the full item list. Only open orders accept item changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest, actorID int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled {
		return nil, fmt.Errorf("%w: cannot update a cancelled order", shared.ErrInvalidState)
	}
	if order.IsDelivered() {
		return nil, fmt.Errorf("%w: cannot update a delivered order", shared.ErrInvalidState)
	}
	if req.Items == nil {
		return order, nil
	}

	items, err := s.buildItems(ctx, *req.Items)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		open, err := tx.LockOpen(ctx, id)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if !open {
			return fmt.Errorf("%w: order no longer open", shared.ErrInvalidState)
		}
		if err := tx.DeleteItems(ctx, id); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		for _, item := range items {
			item.OrderID = id
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return tx.SetUpdatedBy(ctx, id, actorID)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, id, "updated", actorID, "")
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// Deliver marks the order delivered and appends one DELIVERY movement per
// item, all in the same transaction. The movements reference the order and
// carry negative quantities matching the ordered amounts.
func (s *Service) Deliver(ctx context.Context, id int64, actorID int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled {
		return nil, fmt.Errorf("%w: cannot deliver a cancelled order", shared.ErrInvalidState)
	}
	if order.IsDelivered() {
		return nil, fmt.Errorf("%w: order already delivered", shared.ErrInvalidState)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ok, err := tx.MarkDelivered(ctx, id, actorID)
		if err != nil {
			return fmt.Errorf("mark delivered: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: order already delivered or cancelled", shared.ErrInvalidState)
		}
		// Re-read the items under the same transaction. A concurrent item
		// replacement committed after the state check must not leave the
		// movements describing a stale item list.
		items, err := tx.ListItems(ctx, id)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		for _, item := range items {
			m := stock.DeliveryMovement(item.ProductID, item.Quantity, id, actorID)
			if _, err := tx.InsertMovement(ctx, m); err != nil {
				return fmt.Errorf("insert delivery movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, id, "delivered", actorID, "")
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// Cancel marks the order cancelled with a mandatory reason. Cancelling an
// already cancelled order fails. What happens to a delivered order depends on
// the configured policy: forbid rejects it, reverse cancels it and posts
// compensating movements that return the delivered quantities to stock.
func (s *Service) Cancel(ctx context.Context, id int64, req CancelOrderRequest, actorID int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled {
		return nil, fmt.Errorf("%w: order already cancelled", shared.ErrInvalidState)
	}
	reverse := false
	if order.IsDelivered() {
		if s.cancelPolicy != CancelPolicyReverse {
			return nil, fmt.Errorf("%w: cannot cancel a delivered order", shared.ErrInvalidState)
		}
		reverse = true
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ok, err := tx.MarkCancelled(ctx, id, actorID, req.CancellationReason, reverse)
		if err != nil {
			return fmt.Errorf("mark cancelled: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: order already cancelled or delivered", shared.ErrInvalidState)
		}
		if reverse {
			items, err := tx.ListItems(ctx, id)
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}
			for _, item := range items {
				m := stock.ReversalMovement(item.ProductID, item.Quantity, id, actorID)
				if _, err := tx.InsertMovement(ctx, m); err != nil {
					return fmt.Errorf("insert reversal movement: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, id, "cancelled", actorID, "Reason: "+req.CancellationReason)
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

// AddNote appends a note. Notes are accepted in every order state.
func (s *Service) AddNote(ctx context.Context, id int64, req AddNoteRequest, actorID int64) (*Order, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		_, err := tx.InsertNote(ctx, OrderNote{OrderID: id, Note: req.Note, CreatedBy: actorID})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, "note_added", actorID, "")
	return s.repo.Get(ctx, id)
}

func (s *Service) DeleteNote(ctx context.Context, orderID, noteID int64, actorID int64) error {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteNote(ctx, orderID, noteID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, orderID, "note_deleted", actorID, "Note ID: "+strconv.FormatInt(noteID, 10))
	return nil
}

// AddPayment records a payment against the order. Cancelled orders reject
// payments; delivered orders accept them, which is how an order reaches the
// fully completed state after delivery.
func (s *Service) AddPayment(ctx context.Context, id int64, req AddPaymentRequest, actorID int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled {
		return nil, fmt.Errorf("%w: cannot add a payment to a cancelled order", shared.ErrInvalidState)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		_, err := tx.InsertPayment(ctx, Payment{
			OrderID:     id,
			Amount:      req.Amount,
			PaymentType: req.PaymentType,
			ReceivedBy:  actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, id, "payment_added", actorID, fmt.Sprintf("Amount: %.2f (%s)", req.Amount, req.PaymentType))
	s.bump(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) buildItems(ctx context.Context, reqs []OrderItemRequest) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(reqs))
	for _, ir := range reqs {
		product, err := s.catalog.Get(ctx, ir.ProductID)
		if err != nil {
			return nil, fmt.Errorf("verify product %d: %w", ir.ProductID, err)
		}
		items = append(items, OrderItem{
			ProductID:           product.ID,
			ProductNameSnapshot: product.Name,
			Quantity:            ir.Quantity,
			UnitPrice:           ir.UnitPrice,
			TotalPrice:          float64(ir.Quantity) * ir.UnitPrice,
		})
	}
	return items, nil
}

func (s *Service) record(ctx context.Context, orderID int64, action string, actorID int64, details string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.ActivityEntry{
		TableName: "orders",
		RecordID:  orderID,
		Action:    action,
		ActorID:   actorID,
		Details:   details,
	})
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}
