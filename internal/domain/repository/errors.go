package repository

import "errors"

var (
	// ErrNotFound is returned when a catalog item or cart does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOrderNotFound is the terminal "order does not exist" payment signal.
	ErrOrderNotFound = errors.New("order not found")
)
