package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrMisconfigured   = errors.New("server misconfigured")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidCategory = errors.New("invalid category")
)
