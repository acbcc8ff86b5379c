package jobmatches

import "errors"

var (
	ErrNotFound   = errors.New("saved job match not found")
	ErrValidation = errors.New("invalid job match")
)
