package lsh

import "errors"

// Configuration errors. They are returned at construction time, never per token.
var (
	ErrInvalidDecimals      = errors.New("lsh: decimals must be at least 1")
	ErrInvalidPositionStart = errors.New("lsh: position start must not be negative")
	ErrInvalidShingleSize   = errors.New("lsh: shingle sizes must satisfy 1 <= min <= max")
	ErrInvalidHashCount     = errors.New("lsh: hash count must be positive")
	ErrInvalidBucketCount   = errors.New("lsh: bucket count must be positive")
	ErrInvalidHashSetSize   = errors.New("lsh: hash set size must be positive")
)
