package users

import "errors"

var (
	ErrNotFound   = errors.New("user not found")
	ErrValidation = errors.New("invalid user")
)
