package staff

import "errors"

var (
	ErrNotFound           = errors.New("staff account not found")
	ErrInvalid            = errors.New("invalid staff account")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
