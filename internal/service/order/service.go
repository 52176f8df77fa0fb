// Пакет order реализует жизненный цикл заказа с согласованностью остатков.
// Проверка стока, его списание и создание заказа выполняются одной
// атомарной транзакцией хранилища: конкурентные покупатели не могут
// совместно продать больше, чем есть на складе.
package order

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// Service управляет заказами поверх документного хранилища.
type Service struct {
	store  docstore.Store
	orders *repository.Generic[domain.Order]
	logger *log.Entry
}

// NewService создаёт сервис заказов.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		store:  store,
		orders: repository.New(store, domain.CollectionOrders, repository.OrderCodec),
		logger: logger,
	}
}

// Create оформляет заказ по черновику draft и возвращает идентификатор
// созданного заказа. Вся работа происходит в одной транзакции:
// чтение остатков, их атомарное списание, создание документа заказа и
// очистка корзины пользователя. Любая ошибка на любом шаге откатывает
// транзакцию целиком — частичные списания не сохраняются.
//
// Тело транзакции — чистая функция своих чтений: хранилище может
// выполнить его повторно при конфликте с конкурентной транзакцией.
func (s *Service) Create(ctx context.Context, draft domain.OrderDraft) (string, error) {
	if errs := draft.ValidateInvariants(); len(errs) > 0 {
		return "", errs[0]
	}

	var orderID string
	err := s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		// Все чтения выполняются внутри транзакции, чтобы видеть
		// согласованный снапшот; предварительные чтения снаружи
		// не дали бы защиты от конкурентного списания.
		items := make([]domain.OrderItem, 0, len(draft.Items))
		var total float64
		for _, line := range draft.Items {
			data, err := tx.Read(domain.CollectionProducts, line.ProductID)
			if err == docstore.ErrDocumentNotFound {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
			}
			if err != nil {
				return err
			}
			product, err := repository.DecodeProduct(line.ProductID, data)
			if err != nil {
				return fmt.Errorf("%w: %s/%s: %v", repository.ErrMalformedDocument, domain.CollectionProducts, line.ProductID, err)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: product %s has %d, requested %d",
					domain.ErrInsufficientStock, line.ProductID, product.Stock, line.Quantity)
			}

			price := product.EffectivePrice()
			items = append(items, domain.OrderItem{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       price,
				TotalPrice:  price * float64(line.Quantity),
			})
			total += price * float64(line.Quantity)
		}

		// Корзина читается до первой записи: транзакционные чтения
		// после записей хранилищем не поддерживаются.
		_, cartErr := tx.Read(domain.CollectionCarts, draft.UserID)
		hasCart := cartErr == nil
		if cartErr != nil && cartErr != docstore.ErrDocumentNotFound {
			return cartErr
		}

		for _, line := range draft.Items {
			// Списание — атомарная дельта, а не присваивание
			// прочитанного значения: при повторе тела транзакции
			// дельта применится к свежему состоянию корректно.
			if err := tx.Patch(domain.CollectionProducts, line.ProductID, docstore.Document{
				"stock":     docstore.Increment(-line.Quantity),
				"updatedAt": docstore.ServerTimestamp,
			}); err != nil {
				return err
			}
		}

		fields := repository.EncodeOrder(domain.Order{
			UserID:          draft.UserID,
			Items:           items,
			Status:          domain.OrderStatusPending,
			TotalAmount:     total,
			ShippingAddress: draft.ShippingAddress,
			PaymentStatus:   domain.PaymentStatusPending,
		})
		fields["createdAt"] = docstore.ServerTimestamp
		fields["updatedAt"] = docstore.ServerTimestamp
		id, err := tx.Create(domain.CollectionOrders, "", fields)
		if err != nil {
			return err
		}
		orderID = id

		if hasCart {
			if err := tx.Patch(domain.CollectionCarts, draft.UserID, docstore.Document{
				"items":     []any{},
				"updatedAt": docstore.ServerTimestamp,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"user_id":  draft.UserID,
		"items":    len(draft.Items),
	}).Info("order created")
	return orderID, nil
}

// Cancel отменяет заказ и возвращает остатки на склад. Операция
// идемпотентна: повторная отмена уже отменённого заказа — no-op.
// Отмена допустима только из статусов pending и processing.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	var skipped []string
	err := s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		skipped = skipped[:0]

		data, err := tx.Read(domain.CollectionOrders, orderID)
		if err == docstore.ErrDocumentNotFound {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		if err != nil {
			return err
		}
		ord, err := repository.DecodeOrder(orderID, data)
		if err != nil {
			return fmt.Errorf("%w: %s/%s: %v", repository.ErrMalformedDocument, domain.CollectionOrders, orderID, err)
		}

		if ord.Status == domain.OrderStatusCancelled {
			return nil
		}
		if !domain.IsCancelable(ord.Status) {
			return fmt.Errorf("%w: status %s", domain.ErrOrderNotCancelable, ord.Status)
		}

		// Наличие товаров проверяется до записей: удалённый товар
		// не должен блокировать отмену, его позиция пропускается.
		// Это осознанный компромисс, а не потеря остатка молча.
		restore := make([]domain.OrderItem, 0, len(ord.Items))
		for _, item := range ord.Items {
			_, err := tx.Read(domain.CollectionProducts, item.ProductID)
			if err == docstore.ErrDocumentNotFound {
				skipped = append(skipped, item.ProductID)
				continue
			}
			if err != nil {
				return err
			}
			restore = append(restore, item)
		}

		for _, item := range restore {
			if err := tx.Patch(domain.CollectionProducts, item.ProductID, docstore.Document{
				"stock":     docstore.Increment(item.Quantity),
				"updatedAt": docstore.ServerTimestamp,
			}); err != nil {
				return err
			}
		}

		return tx.Patch(domain.CollectionOrders, orderID, docstore.Document{
			"status":    string(domain.OrderStatusCancelled),
			"updatedAt": docstore.ServerTimestamp,
		})
	})
	if err != nil {
		return err
	}

	entry := s.logger.WithField("order_id", orderID)
	if len(skipped) > 0 {
		entry = entry.WithField("skipped_products", skipped)
	}
	entry.Info("order cancelled")
	return nil
}

// UpdateStatus переводит заказ в новый статус, проверяя переход по графу
// pending → processing → shipped → delivered. Отмена через этот метод
// запрещена: она выполняется только Cancel, который возвращает остатки.
// Непустой trackingNumber сохраняется вместе со статусом.
//
// Межсущностных инвариантов здесь нет, поэтому достаточно одиночного
// обновления документа без транзакции.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus, trackingNumber string) error {
	ord, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if !domain.CanTransition(ord.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, ord.Status, newStatus)
	}

	patch := docstore.Document{"status": string(newStatus)}
	if trackingNumber != "" {
		patch["trackingNumber"] = trackingNumber
	}
	if err := s.orders.Update(ctx, orderID, patch); err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     ord.Status,
		"to":       newStatus,
	}).Info("order status updated")
	return nil
}

// MarkPaid отмечает успешную оплату заказа.
func (s *Service) MarkPaid(ctx context.Context, orderID string) error {
	if _, err := s.Get(ctx, orderID); err != nil {
		return err
	}
	return s.orders.Update(ctx, orderID, docstore.Document{
		"paymentStatus": string(domain.PaymentStatusCompleted),
	})
}

// Get возвращает заказ или domain.ErrOrderNotFound.
func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if ord == nil {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return *ord, nil
}

// ListByUser возвращает страницу заказов пользователя, новые первыми.
func (s *Service) ListByUser(ctx context.Context, userID string, pageSize int, cursor string) (repository.Page[domain.Order], error) {
	filters := []docstore.Filter{
		{Field: "userId", Op: docstore.OpEqual, Value: userID},
	}
	return s.orders.GetPaginated(ctx, pageSize, cursor, filters)
}
