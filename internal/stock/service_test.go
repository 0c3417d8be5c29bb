package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caravel-dist/caravel-dist/internal/products"
	"github.com/caravel-dist/caravel-dist/internal/shared"
)

type memoryLedger struct {
	movements map[int64]Movement
	reserved  map[int64]int64
	nextID    int64
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{movements: map[int64]Movement{}, reserved: map[int64]int64{}, nextID: 1}
}

func (m *memoryLedger) Insert(_ context.Context, mv Movement) (int64, error) {
	id := m.nextID
	m.nextID++
	mv.ID = id
	mv.CreatedAt = time.Now()
	m.movements[id] = mv
	return id, nil
}

func (m *memoryLedger) Get(_ context.Context, id int64) (*Movement, error) {
	mv, ok := m.movements[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &mv, nil
}

func (m *memoryLedger) List(_ context.Context, productID *int64) ([]Movement, error) {
	var out []Movement
	for _, mv := range m.movements {
		if productID != nil && mv.ProductID != *productID {
			continue
		}
		out = append(out, mv)
	}
	return out, nil
}

func (m *memoryLedger) TotalStock(_ context.Context, productID int64) (int64, error) {
	var total int64
	for _, mv := range m.movements {
		if mv.ProductID == productID {
			total += mv.Quantity
		}
	}
	return total, nil
}

func (m *memoryLedger) ReservedStock(_ context.Context, productID int64) (int64, error) {
	return m.reserved[productID], nil
}

type stubCatalog struct {
	known map[int64]string
}

func (c *stubCatalog) Get(_ context.Context, id int64) (*products.Product, error) {
	name, ok := c.known[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &products.Product{ID: id, Name: name, IsActive: true}, nil
}

type recordingAudit struct {
	entries []shared.ActivityEntry
}

func (a *recordingAudit) Record(_ context.Context, e shared.ActivityEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func newStockFixture() (*Service, *memoryLedger, *recordingAudit) {
	ledger := newMemoryLedger()
	audit := &recordingAudit{}
	catalog := &stubCatalog{known: map[int64]string{1: "Almond Oil 50ml"}}
	return NewService(ledger, catalog, audit), ledger, audit
}

func TestRecordComputesAverageUnitCost(t *testing.T) {
	svc, _, audit := newStockFixture()
	cost := 250.0

	m, err := svc.Record(context.Background(), MovementInput{
		ProductID:    1,
		MovementType: MovementPurchase,
		Quantity:     100,
		TotalCost:    &cost,
		ActorID:      9,
	})
	require.NoError(t, err)
	require.NotNil(t, m.AverageUnitCost)
	require.InDelta(t, 2.5, *m.AverageUnitCost, 1e-9)
	require.Len(t, audit.entries, 1)
	require.Equal(t, "stock_purchase", audit.entries[0].Action)
}

func TestRecordAverageCostUsesAbsoluteQuantity(t *testing.T) {
	svc, _, _ := newStockFixture()
	cost := 30.0

	m, err := svc.Record(context.Background(), MovementInput{
		ProductID:    1,
		MovementType: MovementWaste,
		Quantity:     -10,
		TotalCost:    &cost,
		ActorID:      9,
	})
	require.NoError(t, err)
	require.InDelta(t, 3.0, *m.AverageUnitCost, 1e-9)
}

func TestRecordRejectsZeroQuantityAndUnknownType(t *testing.T) {
	svc, ledger, _ := newStockFixture()

	_, err := svc.Record(context.Background(), MovementInput{ProductID: 1, MovementType: MovementPurchase, Quantity: 0, ActorID: 9})
	require.ErrorIs(t, err, ErrZeroQuantity)

	_, err = svc.Record(context.Background(), MovementInput{ProductID: 1, MovementType: MovementType("THEFT"), Quantity: 5, ActorID: 9})
	require.ErrorIs(t, err, ErrUnknownType)

	require.Empty(t, ledger.movements)
}

func TestRecordRejectsUnknownProduct(t *testing.T) {
	svc, _, _ := newStockFixture()

	_, err := svc.Record(context.Background(), MovementInput{ProductID: 404, MovementType: MovementPurchase, Quantity: 5, ActorID: 9})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLedgerAllowsNegativeBalance(t *testing.T) {
	svc, _, _ := newStockFixture()
	ctx := context.Background()

	_, err := svc.Record(ctx, MovementInput{ProductID: 1, MovementType: MovementPurchase, Quantity: 10, ActorID: 9})
	require.NoError(t, err)
	_, err = svc.Record(ctx, MovementInput{ProductID: 1, MovementType: MovementWaste, Quantity: -25, ActorID: 9})
	require.NoError(t, err)

	level, err := svc.Level(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(-15), level.Total)
}

func TestLevelSubtractsReservations(t *testing.T) {
	svc, ledger, _ := newStockFixture()
	ctx := context.Background()

	_, err := svc.Record(ctx, MovementInput{ProductID: 1, MovementType: MovementPurchase, Quantity: 150, ActorID: 9})
	require.NoError(t, err)
	ledger.reserved[1] = 20

	level, err := svc.Level(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(150), level.Total)
	require.Equal(t, int64(20), level.Reserved)
	require.Equal(t, int64(130), level.Available())
}
