package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryReportRepo struct {
	dashboardCalls int
	stockCalls     int
	summary        DashboardSummary
	stock          []StockRow
	revenue        []CustomerRevenueRow
}

func (m *memoryReportRepo) DashboardSummary(_ context.Context) (DashboardSummary, error) {
	m.dashboardCalls++
	return m.summary, nil
}

func (m *memoryReportRepo) CustomerRevenue(_ context.Context) ([]CustomerRevenueRow, error) {
	return m.revenue, nil
}

func (m *memoryReportRepo) StockLevels(_ context.Context) ([]StockRow, error) {
	m.stockCalls++
	return append([]StockRow(nil), m.stock...), nil
}

func newReportFixture(t *testing.T) (*Service, *memoryReportRepo, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &memoryReportRepo{
		summary: DashboardSummary{
			TotalOrders:            10,
			PendingDeliveriesCount: 3,
			DeliveredOrders:        6,
			CancelledOrders:        1,
			PendingPaymentsCount:   2,
			TotalRevenue:           900,
			TotalOrderValue:        1200,
			OutstandingAmount:      300,
		},
		stock: []StockRow{
			{ProductID: 2, ProductName: "rose water", TotalStock: 50, ReservedStock: 10, AvailableStock: 40},
			{ProductID: 1, ProductName: "Almond Oil", TotalStock: 20, ReservedStock: 25, AvailableStock: -5},
		},
		revenue: []CustomerRevenueRow{{CustomerID: 7, CustomerName: "Corner Pharmacy", OrderCount: 4, TotalRevenue: 500, TotalOrderValue: 800, OutstandingAmount: 300}},
	}
	cache := NewCache(rdb, time.Minute)
	return NewService(repo, cache), repo, cache
}

func TestDashboardSerialisesPaymentFigures(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	require.Contains(t, fields, "pending_payments_count")
	require.Contains(t, fields, "pending_deliveries_count")
	require.EqualValues(t, 2, fields["pending_payments_count"])
	// total_revenue carries the payment sum; the item sum has its own field.
	require.EqualValues(t, 900, fields["total_revenue"])
	require.EqualValues(t, 1200, fields["total_order_value"])
}

func TestDashboardIsCachedUntilBump(t *testing.T) {
	svc, repo, cache := newReportFixture(t)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(10), first.TotalOrders)
	require.Equal(t, 1, repo.dashboardCalls)

	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.dashboardCalls)

	repo.summary.TotalOrders = 11
	require.NoError(t, cache.Bump(ctx))

	second, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(11), second.TotalOrders)
	require.Equal(t, 2, repo.dashboardCalls)
}

func TestStockLevelsSortedCaseInsensitively(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	rows, err := svc.StockLevels(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Almond Oil", rows[0].ProductName)
	require.Equal(t, "rose water", rows[1].ProductName)
	require.Equal(t, int64(-5), rows[0].AvailableStock)
}

func TestCustomerRevenueOutstanding(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	rows, err := svc.CustomerRevenue(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.InDelta(t, 300.0, rows[0].OutstandingAmount, 1e-9)
}

func TestReportsWorkWithoutCache(t *testing.T) {
	repo := &memoryReportRepo{summary: DashboardSummary{TotalOrders: 2}}
	svc := NewService(repo, nil)

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.TotalOrders)

	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.dashboardCalls)
}
