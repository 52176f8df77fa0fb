// Пакет coupon реализует промокоды: создание, проверку и применение.
//
// Применение купона намеренно не связано транзакцией с созданием
// заказа: Validate и Apply — отдельные вызовы, и при конкуренции
// купон с лимитом может быть применён больше лимита. Это известное
// поведение исходной системы, сохранённое сознательно.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// Причины отказа в применении купона; порядок проверок фиксирован.
const (
	ReasonNotFoundOrInactive = "coupon not found or inactive"
	ReasonOutsideWindow      = "coupon is not valid at this time"
	ReasonUsageLimitReached  = "coupon usage limit reached"
	ReasonBelowMinPurchase   = "order amount is below the coupon minimum"
)

// Validation — результат проверки купона для суммы заказа.
type Validation struct {
	Valid bool
	// Reason — причина первой непройденной проверки; пусто при Valid.
	Reason string
	// Discount — размер скидки; заполняется только при Valid.
	Discount float64
	// Coupon — найденный купон; nil, если код не найден или неактивен.
	Coupon *domain.Coupon
}

// Service реализует операции над купонами.
type Service struct {
	coupons *repository.Generic[domain.Coupon]
	logger  *log.Entry
	// now подменяется в тестах для проверки окна действия.
	now func() time.Time
}

// NewService создаёт сервис купонов.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "coupon-service")
	}
	return &Service{
		coupons: repository.New(store, domain.CollectionCoupons, repository.CouponCodec),
		logger:  logger,
		now:     time.Now,
	}
}

// Create сохраняет новый купон.
func (s *Service) Create(ctx context.Context, c domain.Coupon) (string, error) {
	if errs := c.ValidateInvariants(); len(errs) > 0 {
		return "", errs[0]
	}

	id, err := s.coupons.Add(ctx, c)
	if err != nil {
		return "", err
	}
	s.logger.WithFields(log.Fields{
		"coupon_id": id,
		"code":      c.Code,
	}).Info("coupon created")
	return id, nil
}

// Validate проверяет купон code для суммы amount. Проверки выполняются
// в фиксированном порядке: существование и активность, окно действия,
// лимит использований, минимальная сумма; возвращается первая
// непройденная причина.
func (s *Service) Validate(ctx context.Context, code string, amount float64) (Validation, error) {
	c, err := s.findByCode(ctx, code)
	if err != nil {
		return Validation{}, err
	}
	if c == nil || !c.IsActive {
		return Validation{Reason: ReasonNotFoundOrInactive}, nil
	}

	now := s.now()
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return Validation{Reason: ReasonOutsideWindow, Coupon: c}, nil
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return Validation{Reason: ReasonUsageLimitReached, Coupon: c}, nil
	}
	if amount < c.MinPurchase {
		return Validation{Reason: ReasonBelowMinPurchase, Coupon: c}, nil
	}

	return Validation{
		Valid:    true,
		Discount: c.Discount(amount),
		Coupon:   c,
	}, nil
}

// Apply фиксирует применение купона атомарным инкрементом счётчика.
// Счётчик применяется хранилищем без клиентского чтения, поэтому
// конкурентные применения не теряют друг друга.
func (s *Service) Apply(ctx context.Context, code string) error {
	c, err := s.findByCode(ctx, code)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", domain.ErrCouponNotFound, code)
	}

	if err := s.coupons.Update(ctx, c.ID, docstore.Document{
		"usageCount": docstore.Increment(1),
	}); err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrCouponNotFound, code)
		}
		return err
	}

	s.logger.WithField("code", code).Debug("coupon applied")
	return nil
}

// Deactivate отключает купон, не удаляя его историю применений.
func (s *Service) Deactivate(ctx context.Context, couponID string) error {
	err := s.coupons.Update(ctx, couponID, docstore.Document{"isActive": false})
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrCouponNotFound, couponID)
	}
	return err
}

// findByCode возвращает купон по коду или nil.
func (s *Service) findByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	q := docstore.Query{Limit: 1}.Where("code", docstore.OpEqual, code)
	found, err := s.coupons.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}
