package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks failures of a remote dependency such as the chain
	// node, as opposed to bad input.
	ErrUpstream = errors.New("upstream unavailable")
)
