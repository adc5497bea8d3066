package diary

import "errors"

// ErrInvalidFilter is returned when a filter selector names an unknown value
var ErrInvalidFilter = errors.New("invalid filter")
