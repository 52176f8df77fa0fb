// Пакет review управляет отзывами о товарах.
package review

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// Service реализует операции над отзывами.
type Service struct {
	reviews *repository.Generic[domain.Review]
	logger  *log.Entry
}

// NewService создаёт сервис отзывов.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "review-service")
	}
	return &Service{
		reviews: repository.New(store, domain.CollectionReviews, repository.ReviewCodec),
		logger:  logger,
	}
}

// Add сохраняет отзыв. Правило «один отзыв на пару (пользователь, товар)»
// обеспечивается предварительным запросом; при конкурентных вызовах
// возможен дубль — известное ограничение нетранзакционного пути.
func (s *Service) Add(ctx context.Context, r domain.Review) (string, error) {
	if errs := r.ValidateInvariants(); len(errs) > 0 {
		return "", errs[0]
	}

	q := docstore.Query{Limit: 1}.
		Where("userId", docstore.OpEqual, r.UserID).
		Where("productId", docstore.OpEqual, r.ProductID)
	existing, err := s.reviews.Query(ctx, q)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return "", fmt.Errorf("%w: user %s, product %s", domain.ErrDuplicateReview, r.UserID, r.ProductID)
	}

	id, err := s.reviews.Add(ctx, r)
	if err != nil {
		return "", err
	}
	s.logger.WithFields(log.Fields{
		"review_id":  id,
		"product_id": r.ProductID,
	}).Debug("review added")
	return id, nil
}

// Get возвращает отзыв или domain.ErrReviewNotFound.
func (s *Service) Get(ctx context.Context, reviewID string) (domain.Review, error) {
	r, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if r == nil {
		return domain.Review{}, fmt.Errorf("%w: %s", domain.ErrReviewNotFound, reviewID)
	}
	return *r, nil
}

// Delete удаляет отзыв.
func (s *Service) Delete(ctx context.Context, reviewID string) error {
	err := s.reviews.Delete(ctx, reviewID)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrReviewNotFound, reviewID)
	}
	return err
}

// ListByProduct возвращает страницу отзывов о товаре, новые первыми.
func (s *Service) ListByProduct(ctx context.Context, productID string, pageSize int, cursor string) (repository.Page[domain.Review], error) {
	filters := []docstore.Filter{
		{Field: "productId", Op: docstore.OpEqual, Value: productID},
	}
	return s.reviews.GetPaginated(ctx, pageSize, cursor, filters)
}

// ProductRating возвращает среднюю оценку товара и число отзывов.
func (s *Service) ProductRating(ctx context.Context, productID string) (avg float64, count int, err error) {
	q := docstore.Query{}.Where("productId", docstore.OpEqual, productID)
	reviews, err := s.reviews.Query(ctx, q)
	if err != nil {
		return 0, 0, err
	}
	if len(reviews) == 0 {
		return 0, 0, nil
	}

	var sum int64
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews), nil
}
