package domain

import "time"

// DiscountType определяет способ расчёта скидки купона.
type DiscountType string

const (
	// DiscountTypePercentage — скидка в процентах от суммы.
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed — фиксированная скидка.
	DiscountTypeFixed DiscountType = "fixed"
)

// Coupon описывает промокод с окном действия и лимитом использований.
type Coupon struct {
	ID            string
	Code          string
	DiscountType  DiscountType
	DiscountValue float64
	// MinPurchase — минимальная сумма заказа; 0 означает отсутствие порога.
	MinPurchase float64
	StartDate   time.Time
	EndDate     time.Time
	// UsageLimit — максимум применений; 0 означает отсутствие лимита.
	UsageLimit int64
	UsageCount int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Discount возвращает размер скидки для суммы amount.
// Скидка не превышает саму сумму.
func (c *Coupon) Discount(amount float64) float64 {
	var d float64
	switch c.DiscountType {
	case DiscountTypePercentage:
		d = amount * c.DiscountValue / 100
	case DiscountTypeFixed:
		d = c.DiscountValue
	}
	if d > amount {
		d = amount
	}
	return d
}

// ValidateInvariants проверяет базовые инварианты купона.
func (c *Coupon) ValidateInvariants() []error {
	var errs []error

	if c.Code == "" {
		errs = append(errs, ErrCouponCodeRequired)
	}
	if c.DiscountType != DiscountTypePercentage && c.DiscountType != DiscountTypeFixed {
		errs = append(errs, ErrDiscountTypeInvalid)
	}
	if c.DiscountValue <= 0 {
		errs = append(errs, ErrDiscountValueInvalid)
	}
	if c.EndDate.Before(c.StartDate) {
		errs = append(errs, ErrCouponWindowInvalid)
	}
	if c.UsageLimit > 0 && c.UsageCount > c.UsageLimit {
		errs = append(errs, ErrCouponOverused)
	}

	return errs
}
