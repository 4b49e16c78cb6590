package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound marks an absent course/module/item/progress row. Surfaced
	// to the caller, not retried.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks data corruption, e.g. an item whose parent
	// module cannot be resolved. Fatal to the request.
	ErrInvalidState = errors.New("invalid state")
	// ErrInternal marks storage or infrastructure failure after the cascade
	// rolled back.
	ErrInternal = errors.New("internal error")
)

func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

func InvalidStateError(msg string) error {
	return errors.Join(ErrInvalidState, errors.New(strings.TrimSpace(msg)))
}

// mapStorageError normalizes repo failures into the service error taxonomy.
func mapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) || errors.Is(err, ErrInternal) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNotFound, fmt.Errorf("%s: %w", op, err))
	}
	return errors.Join(ErrInternal, fmt.Errorf("%s: %w", op, err))
}
