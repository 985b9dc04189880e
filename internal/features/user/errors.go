package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("user already exists")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
)
