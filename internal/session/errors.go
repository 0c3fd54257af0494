package session

import "errors"

var (
	// ErrEmptyToken is returned when SaveSession is called with an empty token.
	ErrEmptyToken = errors.New("session: token cannot be empty")

	// ErrEmptyEndpoint is returned when SaveEndpoint is called with an empty URL.
	ErrEmptyEndpoint = errors.New("session: endpoint cannot be empty")
)
