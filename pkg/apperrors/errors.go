package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnsupportedDialect = errors.New("unsupported database type")
	ErrParentNotFound     = errors.New("parent directory not found")
)
