// Пакет user управляет профилями покупателей и их адресами.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
)

// Service реализует операции над пользователями.
type Service struct {
	store  docstore.Store
	users  *repository.Generic[domain.User]
	logger *log.Entry
}

// NewService создаёт сервис пользователей.
func NewService(store docstore.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "user-service")
	}
	return &Service{
		store:  store,
		users:  repository.New(store, domain.CollectionUsers, repository.UserCodec),
		logger: logger,
	}
}

// Create регистрирует пользователя. Уникальность email проверяется
// предварительным запросом; проверка гоночна при конкурентной
// регистрации одного email, что принято для некритичного пути.
func (s *Service) Create(ctx context.Context, u domain.User) (string, error) {
	if errs := u.ValidateInvariants(); len(errs) > 0 {
		return "", errs[0]
	}

	q := docstore.Query{Limit: 1}.Where("email", docstore.OpEqual, u.Email)
	existing, err := s.users.Query(ctx, q)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrEmailTaken, u.Email)
	}

	id, err := s.users.Add(ctx, u)
	if err != nil {
		return "", err
	}
	s.logger.WithField("user_id", id).Info("user created")
	return id, nil
}

// Get возвращает пользователя или domain.ErrUserNotFound.
func (s *Service) Get(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if u == nil {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return *u, nil
}

// Update обновляет перечисленные поля профиля.
func (s *Service) Update(ctx context.Context, userID string, patch docstore.Document) error {
	err := s.users.Update(ctx, userID, patch)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return err
}

// Delete удаляет пользователя.
func (s *Service) Delete(ctx context.Context, userID string) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return err
}

// AddAddress добавляет адрес пользователю и возвращает идентификатор
// адреса. Первый адрес автоматически становится адресом по умолчанию.
// Список адресов перезаписывается в транзакции, чтобы конкурентные
// добавления не потеряли чужую запись.
func (s *Service) AddAddress(ctx context.Context, userID string, addr domain.Address) (string, error) {
	addr.ID = uuid.NewString()

	err := s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		u, err := s.readUser(tx, userID)
		if err != nil {
			return err
		}

		if len(u.Addresses) == 0 {
			addr.IsDefault = true
		} else if addr.IsDefault {
			for i := range u.Addresses {
				u.Addresses[i].IsDefault = false
			}
		}
		u.Addresses = append(u.Addresses, addr)

		return tx.Patch(domain.CollectionUsers, userID, docstore.Document{
			"addresses": repository.EncodeAddresses(u.Addresses),
			"updatedAt": docstore.ServerTimestamp,
		})
	})
	if err != nil {
		return "", err
	}
	return addr.ID, nil
}

// SetDefaultAddress транзакционно делает адрес addressID адресом по
// умолчанию, снимая флаг со всех остальных: инвариант «не более одного
// адреса по умолчанию» сохраняется и при конкурентных вызовах.
func (s *Service) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	return s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		u, err := s.readUser(tx, userID)
		if err != nil {
			return err
		}

		found := false
		for i := range u.Addresses {
			isTarget := u.Addresses[i].ID == addressID
			u.Addresses[i].IsDefault = isTarget
			if isTarget {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrAddressNotFound, addressID)
		}

		return tx.Patch(domain.CollectionUsers, userID, docstore.Document{
			"addresses": repository.EncodeAddresses(u.Addresses),
			"updatedAt": docstore.ServerTimestamp,
		})
	})
}

// RemoveAddress удаляет адрес пользователя.
func (s *Service) RemoveAddress(ctx context.Context, userID, addressID string) error {
	return s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		u, err := s.readUser(tx, userID)
		if err != nil {
			return err
		}

		kept := u.Addresses[:0]
		found := false
		for _, a := range u.Addresses {
			if a.ID == addressID {
				found = true
				continue
			}
			kept = append(kept, a)
		}
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrAddressNotFound, addressID)
		}

		return tx.Patch(domain.CollectionUsers, userID, docstore.Document{
			"addresses": repository.EncodeAddresses(kept),
			"updatedAt": docstore.ServerTimestamp,
		})
	})
}

func (s *Service) readUser(tx docstore.Tx, userID string) (domain.User, error) {
	data, err := tx.Read(domain.CollectionUsers, userID)
	if err == docstore.ErrDocumentNotFound {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	if err != nil {
		return domain.User{}, err
	}
	u, err := repository.DecodeUser(userID, data)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %s/%s: %v", repository.ErrMalformedDocument, domain.CollectionUsers, userID, err)
	}
	return u, nil
}
