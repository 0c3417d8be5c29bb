package products

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

type memoryRepo struct {
	products map[int64]*Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: map[int64]*Product{}, nextID: 1}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context, req ListProductsRequest) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if req.IsActive != nil && p.IsActive != *req.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, p Product) (int64, error) {
	id := m.nextID
	m.nextID++
	p.ID = id
	p.IsActive = true
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.products[id] = &p
	return id, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	p, ok := m.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["category"]; ok {
		p.Category = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		p.IsActive = v.(bool)
	}
	if v, ok := updates["cost_metadata"]; ok {
		s := v.(string)
		p.CostMetadata = &s
	}
	return nil
}

type captureAudit struct {
	entries []shared.ActivityEntry
}

func (a *captureAudit) Record(_ context.Context, e shared.ActivityEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func TestCreateProduct(t *testing.T) {
	audit := &captureAudit{}
	svc := NewService(newMemoryRepo(), audit)

	p, err := svc.Create(context.Background(), CreateProductRequest{Name: "Lavender Oil 50ml", Category: "Essential Oils"}, 7)
	require.NoError(t, err)
	require.True(t, p.IsActive)
	require.Equal(t, "Lavender Oil 50ml", p.Name)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "products", audit.entries[0].TableName)
	require.Equal(t, "created", audit.entries[0].Action)
	require.Equal(t, int64(7), audit.entries[0].ActorID)
}

func TestUpdateProductPartial(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Rose Water 250ml", Category: "Hydrosols"}, 1)
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, p.ID, UpdateProductRequest{IsActive: &inactive}, 1)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	// Untouched fields keep their values.
	require.Equal(t, "Rose Water 250ml", updated.Name)
	require.Equal(t, "Hydrosols", updated.Category)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	name := "ghost"
	_, err := svc.Update(context.Background(), 99, UpdateProductRequest{Name: &name}, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListFiltersByActive(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateProductRequest{Name: "Almond Oil 1L", Category: "Carrier Oils"}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateProductRequest{Name: "Jojoba Oil 1L", Category: "Carrier Oils"}, 1)
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, a.ID, UpdateProductRequest{IsActive: &inactive}, 1)
	require.NoError(t, err)

	active := true
	got, err := svc.List(ctx, ListProductsRequest{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Jojoba Oil 1L", got[0].Name)
}
