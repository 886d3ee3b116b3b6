package hr

import "errors"

var (
	ErrNotFound      = errors.New("employee not found")
	ErrAlreadyExists = errors.New("employee already exists")
	ErrForbidden     = errors.New("operation not permitted")
	ErrInvalidInput  = errors.New("invalid employee data")
)
