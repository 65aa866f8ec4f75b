package customers

import "errors"

// ErrNotFound is returned when a customer id does not exist.
var ErrNotFound = errors.New("customer not found")
