package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation")

	ErrNoOptions           = errors.New("product has no options")
	ErrOptionWithoutValues = errors.New("option has no values")
	ErrTooManyVariants     = errors.New("too many variant combinations")

	ErrUnbalancedEntry = errors.New("journal entry is not balanced")
)
