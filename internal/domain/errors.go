package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartNotFound возвращается, если у пользователя нет корзины.
	ErrCartNotFound = errors.New("cart not found")
	// ErrReviewNotFound возвращается, если отзыв не найден.
	ErrReviewNotFound = errors.New("review not found")
	// ErrCouponNotFound возвращается, если купон не найден.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrAddressNotFound возвращается, если адрес отсутствует у пользователя.
	ErrAddressNotFound = errors.New("address not found")

	// ErrInsufficientStock — недостаточно остатка для запрошенного количества.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatusTransition — запрошенный переход статуса не входит в граф.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrOrderNotCancelable — заказ нельзя отменить в текущем статусе.
	ErrOrderNotCancelable = errors.New("order cannot be cancelled in current state")
	// ErrDuplicateReview — отзыв на пару (пользователь, товар) уже существует.
	ErrDuplicateReview = errors.New("review already exists for this product")
	// ErrEmailTaken — пользователь с таким email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrCartItemMissing — позиции для товара нет в корзине.
	ErrCartItemMissing = errors.New("product is not in the cart")

	// Ошибки инвариантов сущностей.
	ErrProductNameRequired      = errors.New("product name is required")
	ErrPriceInvalid             = errors.New("price must be non-negative")
	ErrStockNegative            = errors.New("stock must be non-negative")
	ErrEmailRequired            = errors.New("email is required")
	ErrRoleInvalid              = errors.New("role must be customer or admin")
	ErrMultipleDefaultAddresses = errors.New("at most one address may be default")
	ErrUserIDRequired           = errors.New("user_id is required")
	ErrProductIDRequired        = errors.New("product_id is required")
	ErrItemsRequired            = errors.New("order must contain at least one item")
	ErrQuantityInvalid          = errors.New("quantity must be greater than zero")
	ErrDuplicateDraftItem       = errors.New("draft contains duplicate product")
	ErrDuplicateCartLine        = errors.New("cart contains duplicate product line")
	ErrRatingInvalid            = errors.New("rating must be between 1 and 5")
	ErrCouponCodeRequired       = errors.New("coupon code is required")
	ErrDiscountTypeInvalid      = errors.New("discount type must be percentage or fixed")
	ErrDiscountValueInvalid     = errors.New("discount value must be greater than zero")
	ErrCouponWindowInvalid      = errors.New("coupon end date is before start date")
	ErrCouponOverused           = errors.New("coupon usage count exceeds limit")
)

// notFoundErrors перечисляет ошибки вида «сущность не найдена».
var notFoundErrors = []error{
	ErrProductNotFound,
	ErrUserNotFound,
	ErrOrderNotFound,
	ErrCartNotFound,
	ErrReviewNotFound,
	ErrCouponNotFound,
	ErrAddressNotFound,
}

// validationErrors перечисляет ошибки нарушения бизнес-правил.
var validationErrors = []error{
	ErrInsufficientStock,
	ErrInvalidStatusTransition,
	ErrOrderNotCancelable,
	ErrDuplicateReview,
	ErrEmailTaken,
	ErrCartItemMissing,
	ErrProductNameRequired,
	ErrPriceInvalid,
	ErrStockNegative,
	ErrEmailRequired,
	ErrRoleInvalid,
	ErrMultipleDefaultAddresses,
	ErrUserIDRequired,
	ErrProductIDRequired,
	ErrItemsRequired,
	ErrQuantityInvalid,
	ErrDuplicateDraftItem,
	ErrDuplicateCartLine,
	ErrRatingInvalid,
	ErrCouponCodeRequired,
	ErrDiscountTypeInvalid,
	ErrDiscountValueInvalid,
	ErrCouponWindowInvalid,
	ErrCouponOverused,
}

// IsNotFound проверяет, относится ли ошибка к виду NotFound.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation проверяет, относится ли ошибка к нарушению бизнес-правил.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
