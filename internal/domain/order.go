package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата и сборка ещё не начаты.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ в обработке.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// statusTransitions задаёт граф допустимых переходов статуса.
// Отмена не входит в граф: она выполняется только через CancelOrder,
// который дополнительно возвращает остатки на склад.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition сообщает, разрешён ли прямой переход статуса from → to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsCancelable сообщает, можно ли отменить заказ в статусе s.
func IsCancelable(s OrderStatus) bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// OrderItem — позиция заказа со снапшотом имени и цены товара
// на момент оформления.
type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int64
	Price       float64
	// TotalPrice = Price * Quantity; фиксируется при создании заказа.
	TotalPrice float64
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	Status          OrderStatus
	TotalAmount     float64
	ShippingAddress Address
	PaymentStatus   PaymentStatus
	TrackingNumber  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderDraft — входные данные для создания заказа.
// Имя и цена позиций заполняются сервисом из актуального товара.
type OrderDraft struct {
	UserID          string
	Items           []DraftItem
	ShippingAddress Address
}

// DraftItem — запрошенная позиция будущего заказа.
type DraftItem struct {
	ProductID string
	Quantity  int64
}

// ValidateInvariants проверяет базовые инварианты черновика заказа.
func (d *OrderDraft) ValidateInvariants() []error {
	var errs []error

	if d.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if len(d.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	seen := make(map[string]struct{}, len(d.Items))
	for _, item := range d.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrProductIDRequired)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if _, dup := seen[item.ProductID]; dup {
			errs = append(errs, ErrDuplicateDraftItem)
		}
		seen[item.ProductID] = struct{}{}
	}

	return errs
}
