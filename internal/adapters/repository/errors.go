package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyPaired = errors.New("appointment already paired")
)
