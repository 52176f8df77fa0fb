package stats_test

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/docstore/memory"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
	"github.com/vladislavdragonenkov/storefront/internal/service/stats"
)

func newService(t *testing.T) (*memory.Store, *stats.Service) {
	t.Helper()
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	store := memory.NewStore()
	return store, stats.NewService(store, baseLogger.WithField("component", "stats-service-test"))
}

func seedOrder(t *testing.T, store *memory.Store, status domain.OrderStatus, total float64, items ...domain.OrderItem) {
	t.Helper()
	fields := repository.EncodeOrder(domain.Order{
		UserID:        "u1",
		Items:         items,
		Status:        status,
		TotalAmount:   total,
		PaymentStatus: domain.PaymentStatusPending,
	})
	fields["createdAt"] = docstore.ServerTimestamp
	fields["updatedAt"] = docstore.ServerTimestamp
	_, err := store.Create(context.Background(), domain.CollectionOrders, "", fields)
	require.NoError(t, err)
}

func item(productID, name string, qty int64, total float64) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		Price:       total / float64(qty),
		TotalPrice:  total,
	}
}

func TestSales(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	seedOrder(t, store, domain.OrderStatusPending, 100)
	seedOrder(t, store, domain.OrderStatusDelivered, 50)
	seedOrder(t, store, domain.OrderStatusDelivered, 25)
	seedOrder(t, store, domain.OrderStatusCancelled, 999)

	summary, err := svc.Sales(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, summary.OrderCount)
	// Отменённые заказы не считаются выручкой, но видны в разбивке.
	require.InDelta(t, 175.0, summary.TotalRevenue, 1e-9)
	require.Equal(t, 1, summary.ByStatus[domain.OrderStatusPending])
	require.Equal(t, 2, summary.ByStatus[domain.OrderStatusDelivered])
	require.Equal(t, 1, summary.ByStatus[domain.OrderStatusCancelled])
}

func TestSales_Empty(t *testing.T) {
	_, svc := newService(t)

	summary, err := svc.Sales(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.OrderCount)
	require.Zero(t, summary.TotalRevenue)
	require.Empty(t, summary.ByStatus)
}

func TestTopSellingProducts(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	seedOrder(t, store, domain.OrderStatusDelivered, 60,
		item("mug", "Mug", 3, 37.5),
		item("lamp", "Lamp", 1, 45.0),
	)
	seedOrder(t, store, domain.OrderStatusPending, 25,
		item("mug", "Mug", 2, 25.0),
	)
	// Отменённый заказ не попадает в рейтинг.
	seedOrder(t, store, domain.OrderStatusCancelled, 450,
		item("lamp", "Lamp", 10, 450.0),
	)

	top, err := svc.TopSellingProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	require.Equal(t, "mug", top[0].ProductID)
	require.Equal(t, int64(5), top[0].UnitsSold)
	require.InDelta(t, 62.5, top[0].Revenue, 1e-9)

	require.Equal(t, "lamp", top[1].ProductID)
	require.Equal(t, int64(1), top[1].UnitsSold)
}

func TestTopSellingProducts_Limit(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	seedOrder(t, store, domain.OrderStatusDelivered, 100,
		item("a", "A", 5, 50),
		item("b", "B", 3, 30),
		item("c", "C", 1, 20),
	)

	top, err := svc.TopSellingProducts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "a", top[0].ProductID)
	require.Equal(t, "b", top[1].ProductID)
}

func TestLowStock(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	for id, stock := range map[string]int64{"mug": 2, "lamp": 50, "blanket": 0} {
		fields := repository.EncodeProduct(domain.Product{Name: id, Price: 10, Stock: stock})
		_, err := store.Create(ctx, domain.CollectionProducts, id, fields)
		require.NoError(t, err)
	}

	low, err := svc.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 2)
	// Сортировка по возрастанию остатка.
	require.Equal(t, int64(0), low[0].Stock)
	require.Equal(t, int64(2), low[1].Stock)
}
