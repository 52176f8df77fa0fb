// Пакет cart управляет единственной корзиной пользователя.
// Мутации, требующие проверки остатка, выполняются транзакционно:
// чтение корзины, проверка стока и запись — один атомарный шаг.
// Проверка идёт против полного остатка товара: резервирование по
// чужим корзинам не отслеживается, сток списывается только при
// оформлении заказа.
package cart

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// Service реализует операции над корзиной.
type Service struct {
	store  docstore.Store
	carts  *repository.Generic[domain.Cart]
	logger *log.Entry
}

// NewService создаёт сервис корзины.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &Service{
		store:  store,
		carts:  repository.New(store, domain.CollectionCarts, repository.CartCodec),
		logger: logger,
	}
}

// Get возвращает корзину пользователя или domain.ErrCartNotFound.
func (s *Service) Get(ctx context.Context, userID string) (domain.Cart, error) {
	c, err := s.carts.GetByID(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if c == nil {
		return domain.Cart{}, fmt.Errorf("%w: user %s", domain.ErrCartNotFound, userID)
	}
	return *c, nil
}

// AddToCart добавляет qty единиц товара в корзину пользователя.
// Если позиция уже есть, её количество увеличивается — на один товар
// в корзине всегда не больше одной строки. Остаток проверяется в той
// же транзакции, что и запись корзины.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}

	err := s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		cart, exists, err := readCart(tx, userID)
		if err != nil {
			return err
		}

		requested := qty
		if line := cart.ItemFor(productID); line != nil {
			requested += line.Quantity
		}
		if err := checkStock(tx, productID, requested); err != nil {
			return err
		}

		if line := cart.ItemFor(productID); line != nil {
			line.Quantity += qty
		} else {
			cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: qty})
		}

		return writeCart(tx, userID, cart, exists)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   qty,
	}).Debug("cart item added")
	return nil
}

// UpdateItem заменяет количество позиции. Нулевое количество удаляет
// позицию; положительное перепроверяет остаток в транзакции.
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, qty int64) error {
	if qty < 0 {
		return domain.ErrQuantityInvalid
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	return s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		cart, exists, err := readCart(tx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: user %s", domain.ErrCartNotFound, userID)
		}

		line := cart.ItemFor(productID)
		if line == nil {
			return fmt.Errorf("%w: %s", domain.ErrCartItemMissing, productID)
		}
		if err := checkStock(tx, productID, qty); err != nil {
			return err
		}

		line.Quantity = qty
		return writeCart(tx, userID, cart, true)
	})
}

// RemoveItem убирает позицию из корзины. Проверка остатка не нужна:
// удаление не может привести к перепродаже.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		cart, exists, err := readCart(tx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: user %s", domain.ErrCartNotFound, userID)
		}

		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
		return writeCart(tx, userID, cart, true)
	})
}

// Clear опустошает корзину пользователя.
func (s *Service) Clear(ctx context.Context, userID string) error {
	err := s.carts.Update(ctx, userID, docstore.Document{"items": []any{}})
	// Отсутствие корзины эквивалентно пустой корзине.
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return nil
	}
	return err
}

// readCart читает корзину в транзакции; exists=false, если документа нет.
func readCart(tx docstore.Tx, userID string) (domain.Cart, bool, error) {
	data, err := tx.Read(domain.CollectionCarts, userID)
	if err == docstore.ErrDocumentNotFound {
		return domain.Cart{ID: userID, UserID: userID}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, err
	}
	cart, err := repository.DecodeCart(userID, data)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("%w: %s/%s: %v", repository.ErrMalformedDocument, domain.CollectionCarts, userID, err)
	}
	return cart, true, nil
}

// checkStock проверяет, что остаток товара не меньше qty.
func checkStock(tx docstore.Tx, productID string, qty int64) error {
	data, err := tx.Read(domain.CollectionProducts, productID)
	if err == docstore.ErrDocumentNotFound {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if err != nil {
		return err
	}
	product, err := repository.DecodeProduct(productID, data)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", repository.ErrMalformedDocument, domain.CollectionProducts, productID, err)
	}
	if product.Stock < qty {
		return fmt.Errorf("%w: product %s has %d, requested %d",
			domain.ErrInsufficientStock, productID, product.Stock, qty)
	}
	return nil
}

// writeCart сохраняет позиции корзины, создавая документ при необходимости.
func writeCart(tx docstore.Tx, userID string, cart domain.Cart, exists bool) error {
	if !exists {
		fields := repository.EncodeCart(cart)
		fields["createdAt"] = docstore.ServerTimestamp
		fields["updatedAt"] = docstore.ServerTimestamp
		_, err := tx.Create(domain.CollectionCarts, userID, fields)
		return err
	}
	return tx.Patch(domain.CollectionCarts, userID, docstore.Document{
		"items":     repository.EncodeCartItems(cart.Items),
		"updatedAt": docstore.ServerTimestamp,
	})
}
