package domain

import "time"

// Review — отзыв пользователя о товаре. На пару (UserID, ProductID)
// допускается не более одного отзыва.
type Review struct {
	ID        string
	UserID    string
	ProductID string
	// Rating — оценка от 1 до 5.
	Rating    int64
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты отзыва.
func (r *Review) ValidateInvariants() []error {
	var errs []error

	if r.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if r.ProductID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if r.Rating < 1 || r.Rating > 5 {
		errs = append(errs, ErrRatingInvalid)
	}

	return errs
}
