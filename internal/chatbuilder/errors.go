package chatbuilder

import "errors"

var ErrInvalidInput = errors.New("invalid input")
