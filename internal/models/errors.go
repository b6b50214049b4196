package models

import "errors"

// Error kinds shared by the stores, the resolver and the HTTP handlers.
// Use errors.Is to check for them, they are usually wrapped.
var (
	// ErrUnavailable means the primary store could not be reached
	ErrUnavailable = errors.New("database unavailable")
	// ErrQueryFailed means the primary store was reached but the query failed (malformed id, driver error)
	ErrQueryFailed = errors.New("database query failed")
	// ErrNotFound means the tutorial is absent from every store that was consulted
	ErrNotFound = errors.New("tutorial not found")
	// ErrValidation means the request is missing required fields or carries invalid values
	ErrValidation = errors.New("validation failed")
	// ErrMirrorIO means the mirror file could not be read or written
	ErrMirrorIO = errors.New("mirror file i/o failed")
	// ErrMirrorParse means the mirror file exists but is not a valid tutorial mapping
	ErrMirrorParse = errors.New("mirror file is malformed")
)
