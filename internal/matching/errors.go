package matching

import "errors"

var (
	// ErrCollect wraps any failure while gathering candidates. Nothing was mutated.
	ErrCollect = errors.New("collect candidates")
	// ErrCommit wraps a hard failure while persisting outcomes.
	ErrCommit = errors.New("commit outcomes")
)
