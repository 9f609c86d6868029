package domain

import "errors"

var (
	// ErrInvalidArgument signals a caller-supplied value that violates a contract,
	// such as a blank filter field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEngineUnavailable signals a failed call to the search engine.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrInvalidConfig signals an unusable configuration value at startup.
	ErrInvalidConfig = errors.New("invalid configuration")
)
