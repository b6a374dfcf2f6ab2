package domain

import "errors"

// Validation failures reported back to the presentation layer.
// None of them leave a state change behind.
var (
	ErrInvalidPosition    = errors.New("invalid position: must be one of PPM, APM, GM")
	ErrMissingField       = errors.New("invalid input: all fields are required")
	ErrDuplicateUserID    = errors.New("user id already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrCompanyNotFound    = errors.New("company not found")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
