// Пакет catalog предоставляет операции над товарами каталога.
package catalog

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// Service реализует CRUD и выборки каталога.
type Service struct {
	products *repository.Generic[domain.Product]
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog-service")
	}
	return &Service{
		products: repository.New(store, domain.CollectionProducts, repository.ProductCodec),
		logger:   logger,
	}
}

// Create сохраняет новый товар и возвращает его идентификатор.
func (s *Service) Create(ctx context.Context, product domain.Product) (string, error) {
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return "", errs[0]
	}

	id, err := s.products.Add(ctx, product)
	if err != nil {
		return "", err
	}
	s.logger.WithFields(log.Fields{
		"product_id": id,
		"sku":        product.SKU,
	}).Info("product created")
	return id, nil
}

// Get возвращает товар или domain.ErrProductNotFound.
func (s *Service) Get(ctx context.Context, productID string) (domain.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if p == nil {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return *p, nil
}

// Update обновляет перечисленные поля товара.
func (s *Service) Update(ctx context.Context, productID string, patch docstore.Document) error {
	err := s.products.Update(ctx, productID, patch)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return err
}

// Delete удаляет товар из каталога.
func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := s.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		return err
	}
	s.logger.WithField("product_id", productID).Info("product deleted")
	return nil
}

// List возвращает страницу каталога, новые товары первыми.
func (s *Service) List(ctx context.Context, pageSize int, cursor string) (repository.Page[domain.Product], error) {
	return s.products.GetPaginated(ctx, pageSize, cursor, nil)
}

// ListByCategory возвращает страницу товаров категории.
func (s *Service) ListByCategory(ctx context.Context, category string, pageSize int, cursor string) (repository.Page[domain.Product], error) {
	filters := []docstore.Filter{
		{Field: "categories", Op: docstore.OpArrayContains, Value: category},
	}
	return s.products.GetPaginated(ctx, pageSize, cursor, filters)
}

// Featured возвращает товары, отмеченные для витрины.
func (s *Service) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	q := docstore.Query{Limit: limit}.
		Where("featured", docstore.OpEqual, true)
	return s.products.Query(ctx, q)
}

// ByPriceRange возвращает товары с ценой в диапазоне [min, max].
func (s *Service) ByPriceRange(ctx context.Context, min, max float64) ([]domain.Product, error) {
	q := docstore.Query{}.
		Where("price", docstore.OpGreaterOrEqual, min).
		Where("price", docstore.OpLessOrEqual, max).
		SortBy("price", docstore.Ascending)
	return s.products.Query(ctx, q)
}
