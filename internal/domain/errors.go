package domain

import "github.com/cockroachdb/errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrUnknownSeat  = errors.New("seat is not offered for this flight")
	ErrNoSelection  = errors.New("no seats selected")
)
