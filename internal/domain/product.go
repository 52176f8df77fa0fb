package domain

import "time"

// Product описывает товар каталога.
type Product struct {
	ID          string
	Name        string
	Description string
	// Price — базовая цена товара.
	Price float64
	// DiscountPrice — цена со скидкой; nil, если скидки нет.
	DiscountPrice *float64
	// Categories — список категорий, по которым товар ищется через array-contains.
	Categories []string
	// Stock — доступный остаток; никогда не опускается ниже нуля.
	Stock int64
	SKU   string
	// Featured помечает товар для витрины.
	Featured bool
	// Attributes — произвольные характеристики товара (цвет, размер и т.п.).
	Attributes map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectivePrice возвращает цену с учётом скидки.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrPriceInvalid)
	}
	if p.DiscountPrice != nil && *p.DiscountPrice < 0 {
		errs = append(errs, ErrPriceInvalid)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
