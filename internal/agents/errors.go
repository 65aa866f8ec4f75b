package agents

import "errors"

// ErrUnknownAgent is returned when a name is not in the catalogue.
var ErrUnknownAgent = errors.New("unknown agent")
