package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
)

// translate maps gorm errors onto apperrors sentinels and adds context.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
