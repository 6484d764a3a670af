package patient

import "errors"

var (
	ErrNotFound       = errors.New("patient not found")
	ErrInvalid        = errors.New("invalid patient")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is the single failure every login miss maps to,
	// whether the email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
