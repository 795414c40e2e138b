package manager

import "errors"

var (
	// ErrValidation is reserved; out-of-range coordinates fall back to free text.
	ErrValidation  = errors.New("invalid input")
	ErrNotFound    = errors.New("not found")
	ErrNetwork     = errors.New("network error")
	ErrGeolocation = errors.New("geolocation error")
)
