// Пакет stats строит отчёты полным проходом по коллекциям.
// Инкрементальных счётчиков нет: стоимость растёт линейно с числом
// заказов, что приемлемо для административных отчётов.
package stats

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// SalesSummary — сводка продаж по всем заказам.
type SalesSummary struct {
	// TotalRevenue — суммарная выручка по заказам, кроме отменённых.
	TotalRevenue float64
	// OrderCount — общее число заказов, включая отменённые.
	OrderCount int
	// ByStatus — число заказов в каждом статусе.
	ByStatus map[domain.OrderStatus]int
}

// ProductSales — продажи одного товара.
type ProductSales struct {
	ProductID   string
	ProductName string
	// UnitsSold — продано единиц без учёта отменённых заказов.
	UnitsSold int64
	Revenue   float64
}

// Service строит отчёты по заказам и каталогу.
type Service struct {
	orders   *repository.Generic[domain.Order]
	products *repository.Generic[domain.Product]
	logger   *log.Entry
}

// NewService создаёт сервис отчётов.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "stats-service")
	}
	return &Service{
		orders:   repository.New(store, domain.CollectionOrders, repository.OrderCodec),
		products: repository.New(store, domain.CollectionProducts, repository.ProductCodec),
		logger:   logger,
	}
}

// Sales возвращает сводку продаж по всем заказам.
func (s *Service) Sales(ctx context.Context) (SalesSummary, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return SalesSummary{}, err
	}

	summary := SalesSummary{
		OrderCount: len(orders),
		ByStatus:   make(map[domain.OrderStatus]int),
	}
	for _, o := range orders {
		summary.ByStatus[o.Status]++
		if o.Status != domain.OrderStatusCancelled {
			summary.TotalRevenue += o.TotalAmount
		}
	}
	return summary, nil
}

// TopSellingProducts возвращает limit самых продаваемых товаров,
// сгруппированных в памяти по позициям неотменённых заказов.
func (s *Service) TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*ProductSales)
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			sales, ok := byProduct[item.ProductID]
			if !ok {
				sales = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = sales
			}
			sales.UnitsSold += item.Quantity
			sales.Revenue += item.TotalPrice
		}
	}

	ranked := make([]ProductSales, 0, len(byProduct))
	for _, sales := range byProduct {
		ranked = append(ranked, *sales)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].UnitsSold != ranked[j].UnitsSold {
			return ranked[i].UnitsSold > ranked[j].UnitsSold
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// LowStock возвращает товары с остатком не выше threshold,
// отсортированные по возрастанию остатка.
func (s *Service) LowStock(ctx context.Context, threshold int64) ([]domain.Product, error) {
	q := docstore.Query{}.
		Where("stock", docstore.OpLessOrEqual, threshold).
		SortBy("stock", docstore.Ascending)
	return s.products.Query(ctx, q)
}
