package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

type memoryRepo struct {
	customers map[int64]*Customer
	nextID    int64
	nextChild int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: map[int64]*Customer{}, nextID: 1, nextChild: 1}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range m.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, c Customer) (int64, error) {
	id := m.nextID
	m.nextID++
	c.ID = id
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.customers[id] = &c
	return id, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	c, ok := m.customers[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["primary_phone"]; ok {
		c.PrimaryPhone = v.(string)
	}
	if v, ok := updates["additional_phones"]; ok {
		s := v.(string)
		c.AdditionalPhones = &s
	}
	return nil
}

func (m *memoryRepo) HasStatus(_ context.Context, customerID int64, status string) (bool, error) {
	c, ok := m.customers[customerID]
	if !ok {
		return false, shared.ErrNotFound
	}
	for _, st := range c.Statuses {
		if st.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) AddStatus(_ context.Context, st CustomerStatus) (int64, error) {
	c, ok := m.customers[st.CustomerID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	st.ID = m.nextChild
	m.nextChild++
	st.AssignedAt = time.Now()
	c.Statuses = append(c.Statuses, st)
	return st.ID, nil
}

func (m *memoryRepo) GetStatus(_ context.Context, customerID, statusID int64) (*CustomerStatus, error) {
	c, ok := m.customers[customerID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for _, st := range c.Statuses {
		if st.ID == statusID {
			return &st, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) RemoveStatus(_ context.Context, customerID, statusID int64) error {
	c, ok := m.customers[customerID]
	if !ok {
		return shared.ErrNotFound
	}
	for i, st := range c.Statuses {
		if st.ID == statusID {
			c.Statuses = append(c.Statuses[:i], c.Statuses[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryRepo) AddNote(_ context.Context, n CustomerNote) (int64, error) {
	c, ok := m.customers[n.CustomerID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	n.ID = m.nextChild
	m.nextChild++
	n.CreatedAt = time.Now()
	c.Notes = append(c.Notes, n)
	return n.ID, nil
}

func (m *memoryRepo) DeleteNote(_ context.Context, customerID, noteID int64) error {
	c, ok := m.customers[customerID]
	if !ok {
		return shared.ErrNotFound
	}
	for i, n := range c.Notes {
		if n.ID == noteID {
			c.Notes = append(c.Notes[:i], c.Notes[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

type captureAudit struct {
	entries []shared.ActivityEntry
}

func (a *captureAudit) Record(_ context.Context, e shared.ActivityEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func TestCreateAndUpdateCustomer(t *testing.T) {
	repo := newMemoryRepo()
	audit := &captureAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Corner Pharmacy", PrimaryPhone: "+90 532 000 0001"}, 1)
	require.NoError(t, err)
	require.Equal(t, "Corner Pharmacy", c.Name)

	newName := "Corner Pharmacy Ltd"
	updated, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{Name: &newName}, 1)
	require.NoError(t, err)
	require.Equal(t, newName, updated.Name)
	require.Equal(t, "+90 532 000 0001", updated.PrimaryPhone)

	require.Len(t, audit.entries, 2)
	require.Equal(t, "created", audit.entries[0].Action)
	require.Equal(t, "updated", audit.entries[1].Action)
}

func TestUpdateUnknownCustomer(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	name := "ghost"
	_, err := svc.Update(context.Background(), 42, UpdateCustomerRequest{Name: &name}, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDuplicateStatusRejected(t *testing.T) {
	repo := newMemoryRepo()
	audit := &captureAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Green Herb Shop", PrimaryPhone: "555"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.AddStatus(ctx, c.ID, AddStatusRequest{Status: "VIP"}, 1))
	err = svc.AddStatus(ctx, c.ID, AddStatusRequest{Status: "VIP"}, 1)
	require.ErrorIs(t, err, shared.ErrConflict)

	// A different status is still accepted.
	require.NoError(t, svc.AddStatus(ctx, c.ID, AddStatusRequest{Status: "WHOLESALE"}, 1))

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Statuses, 2)
}

func TestRemoveStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &captureAudit{})
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Depot", PrimaryPhone: "556"}, 1)
	require.NoError(t, err)
	require.NoError(t, svc.AddStatus(ctx, c.ID, AddStatusRequest{Status: "NEW"}, 1))

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Statuses, 1)

	require.NoError(t, svc.RemoveStatus(ctx, c.ID, got.Statuses[0].ID, 1))
	err = svc.RemoveStatus(ctx, c.ID, got.Statuses[0].ID, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Once removed, the same value may be assigned again.
	require.NoError(t, svc.AddStatus(ctx, c.ID, AddStatusRequest{Status: "NEW"}, 1))
}

func TestCustomerNotes(t *testing.T) {
	repo := newMemoryRepo()
	audit := &captureAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Kiosk", PrimaryPhone: "557"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.AddNote(ctx, c.ID, AddNoteRequest{Note: "prefers morning deliveries"}, 1))
	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)

	require.NoError(t, svc.DeleteNote(ctx, c.ID, got.Notes[0].ID, 1))
	err = svc.DeleteNote(ctx, c.ID, got.Notes[0].ID, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
