package inference

import "errors"

// ErrUnexpectedStatus is returned when the endpoint answers with anything other than 200.
var ErrUnexpectedStatus = errors.New("unexpected inference status")
