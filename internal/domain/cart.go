package domain

import "time"

// CartItem — позиция корзины; количество всегда положительное,
// ноль означает удаление позиции.
type CartItem struct {
	ProductID string
	Quantity  int64
}

// Cart — единственная корзина пользователя. Идентификатор документа
// совпадает с идентификатором пользователя, чтобы транзакции могли
// читать корзину точечно, без запроса.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemFor возвращает позицию корзины для товара, либо nil.
func (c *Cart) ItemFor(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// ValidateInvariants проверяет, что в корзине нет дублей и нулевых количеств.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	seen := make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if _, dup := seen[item.ProductID]; dup {
			errs = append(errs, ErrDuplicateCartLine)
		}
		seen[item.ProductID] = struct{}{}
	}

	return errs
}
