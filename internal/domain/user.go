package domain

import "time"

// UserRole определяет уровень доступа пользователя.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

// Address — адрес доставки, вложенный в документ пользователя.
type Address struct {
	ID         string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	// IsDefault может быть true не более чем у одного адреса пользователя.
	IsDefault bool
}

// User агрегирует профиль покупателя и его адреса.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Addresses []Address
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultAddress возвращает адрес по умолчанию, либо nil.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	return nil
}

// ValidateInvariants проверяет базовые инварианты пользователя.
func (u *User) ValidateInvariants() []error {
	var errs []error

	if u.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}
	if u.Role != UserRoleCustomer && u.Role != UserRoleAdmin {
		errs = append(errs, ErrRoleInvalid)
	}

	defaults := 0
	for _, addr := range u.Addresses {
		if addr.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		errs = append(errs, ErrMultipleDefaultAddresses)
	}

	return errs
}
