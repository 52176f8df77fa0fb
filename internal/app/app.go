// Пакет app собирает зависимости витрины: хранилище, метрики и сервисы.
package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/docstore/firestoredb"
	"github.com/vladislavdragonenkov/storefront/internal/docstore/memory"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/coupon"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/service/review"
	"github.com/vladislavdragonenkov/storefront/internal/service/stats"
	"github.com/vladislavdragonenkov/storefront/internal/service/user"
)

// Backend выбирает реализацию документного хранилища.
type Backend string

const (
	// BackendMemory — хранилище в памяти для тестов и локальной разработки.
	BackendMemory Backend = "memory"
	// BackendFirestore — управляемое хранилище Firestore.
	BackendFirestore Backend = "firestore"
)

// Config — конфигурация приложения.
type Config struct {
	// Backend — выбранная реализация хранилища.
	Backend Backend
	// ProjectID — проект Firestore; игнорируется для memory-бэкенда.
	// При заданном FIRESTORE_EMULATOR_HOST клиент подключается к эмулятору.
	ProjectID string
	// EnableMetrics включает инструментирование хранилища метриками Prometheus.
	EnableMetrics bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendFirestore,
		ProjectID:     "storefront-demo",
		EnableMetrics: true,
	}
}

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store   docstore.Store
	Catalog *catalog.Service
	Cart    *cart.Service
	Order   *order.Service
	Coupon  *coupon.Service
	Review  *review.Service
	User    *user.Service
	Stats   *stats.Service
	Logger  *log.Entry
}

// NewDependencies создаёт хранилище по конфигурации и собирает на нём
// все сервисы витрины.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	var store docstore.Store
	switch cfg.Backend {
	case BackendMemory:
		store = memory.NewStore()
	case BackendFirestore:
		s, err := firestoredb.Open(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("open firestore: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.EnableMetrics {
		store = docstore.WithMetrics(store, metrics.NewStoreMetrics())
	}

	return &Dependencies{
		Store:   store,
		Catalog: catalog.NewService(store, logger.WithField("component", "catalog-service")),
		Cart:    cart.NewService(store, logger.WithField("component", "cart-service")),
		Order:   order.NewService(store, logger.WithField("component", "order-service")),
		Coupon:  coupon.NewService(store, logger.WithField("component", "coupon-service")),
		Review:  review.NewService(store, logger.WithField("component", "review-service")),
		User:    user.NewService(store, logger.WithField("component", "user-service")),
		Stats:   stats.NewService(store, logger.WithField("component", "stats-service")),
		Logger:  logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	return d.Store.Close()
}
