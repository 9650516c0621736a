package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnsafeIdentifier   = errors.New("identifier failed injection screening")
	ErrUnsupportedDialect = errors.New("unsupported datasource dialect")
)
