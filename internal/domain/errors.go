package domain

import "errors"

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrCommentaryNotFound = errors.New("commentary entry not found")
	ErrEmptyUpdate        = errors.New("at least one field must be provided")
)
