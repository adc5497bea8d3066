package cases

import "errors"

var (
	// ErrNotFound is returned when no case with the id belongs to the user
	ErrNotFound = errors.New("case not found")
	// ErrNoSession is returned when an operation is attempted without a signed in user
	ErrNoSession = errors.New("no authenticated user")
	// ErrInvalid is returned when submitted fields fail validation
	ErrInvalid = errors.New("invalid input")
)
