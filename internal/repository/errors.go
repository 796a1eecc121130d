package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNotMatched is returned by conditional updates when no document
	// satisfied the condition.
	ErrNotMatched = errors.New("condition not matched")
)
